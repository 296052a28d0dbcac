package configs

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = 5001
	DefaultDatabaseURL  = "sqlite:///to_do_list.db"
	DefaultSessionTTL   = 30 * 24 * time.Hour
	DefaultLogDir       = "logs"
	DefaultPasswordHash = "pbkdf2"
)

type Config struct {
	Port        int
	DatabaseURL string

	SecretKey          string
	SecretKeyGenerated bool
	SessionTTL         time.Duration
	CookieSecure       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogDir string

	PasswordScheme   string
	PBKDF2Iterations int

	EnforceTaskOwnership bool
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	cfg := Config{
		Port:                 envInt("PORT", DefaultPort),
		DatabaseURL:          envString("DB_URI", DefaultDatabaseURL),
		SecretKey:            envString("SECRET_KEY", os.Getenv("FLASK_KEY")),
		SessionTTL:           envDuration("SESSION_TTL", DefaultSessionTTL),
		CookieSecure:         envBool("COOKIE_SECURE", false),
		RedisAddr:            envString("REDIS_ADDR", ""),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envInt("REDIS_DB", 0),
		LogDir:               envString("LOG_DIR", DefaultLogDir),
		PasswordScheme:       envString("PASSWORD_SCHEME", DefaultPasswordHash),
		PBKDF2Iterations:     envInt("PBKDF2_ITERATIONS", 0),
		EnforceTaskOwnership: envBool("ENFORCE_TASK_OWNERSHIP", true),
	}

	// Tanpa secret key, session tetap bisa ditandatangani tetapi tidak
	// bertahan setelah restart.
	if cfg.SecretKey == "" {
		cfg.SecretKey = randomKey()
		cfg.SecretKeyGenerated = true
	}

	return cfg
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

// envDuration menerima format time.ParseDuration ("720h") atau jumlah detik.
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func randomKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Cannot generate secret key: %v", err)
	}
	return hex.EncodeToString(buf)
}
