package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Scheme memilih algoritma hash password yang dipakai untuk digest baru.
type Scheme string

const (
	SchemePBKDF2 Scheme = "pbkdf2"
	SchemeBcrypt Scheme = "bcrypt"
)

const (
	DefaultIterations = 600000
	DefaultSaltLength = 16

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrUnknownScheme = errors.New("unknown password scheme")

// Hasher menghasilkan digest password. Verify tidak bergantung pada Hasher,
// sehingga digest lama tetap valid ketika scheme diganti.
type Hasher struct {
	Scheme     Scheme
	Iterations int
	SaltLength int
	BcryptCost int
}

// NewHasher membuat Hasher dari nama scheme ("" berarti pbkdf2).
func NewHasher(scheme string, iterations int) (*Hasher, error) {
	h := &Hasher{
		Scheme:     Scheme(strings.ToLower(strings.TrimSpace(scheme))),
		Iterations: iterations,
		SaltLength: DefaultSaltLength,
		BcryptCost: bcrypt.DefaultCost,
	}
	if h.Scheme == "" {
		h.Scheme = SchemePBKDF2
	}
	if h.Iterations <= 0 {
		h.Iterations = DefaultIterations
	}
	switch h.Scheme {
	case SchemePBKDF2, SchemeBcrypt:
		return h, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// Hash mengembalikan digest dengan salt acak; hasilnya berbeda di setiap panggilan.
// Format pbkdf2: "pbkdf2:sha256:<iterations>$<salt>$<hex>".
func (h *Hasher) Hash(password string) (string, error) {
	if h.Scheme == SchemeBcrypt {
		digest, err := bcrypt.GenerateFromPassword([]byte(password), h.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(digest), nil
	}

	salt, err := genSalt(h.SaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(key)), nil
}

// Verify membandingkan password dengan digest pbkdf2 atau bcrypt.
// Digest yang rusak menghasilkan false.
func Verify(password, digest string) bool {
	if strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}

	parts := strings.SplitN(digest, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	newHash, size, iterations, ok := parsePBKDF2Method(method)
	if !ok {
		return false
	}
	wantKey, err := hex.DecodeString(want)
	if err != nil || len(wantKey) != size {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, size, newHash)
	return subtle.ConstantTimeCompare(got, wantKey) == 1
}

// parsePBKDF2Method membaca "pbkdf2:<hash>[:<iterations>]".
func parsePBKDF2Method(method string) (func() hash.Hash, int, int, bool) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || len(fields) > 3 || fields[0] != "pbkdf2" {
		return nil, 0, 0, false
	}

	iterations := DefaultIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return nil, 0, 0, false
		}
		iterations = n
	}

	switch fields[1] {
	case "sha256":
		return sha256.New, sha256.Size, iterations, true
	case "sha512":
		return sha512.New, sha512.Size, iterations, true
	default:
		return nil, 0, 0, false
	}
}

func genSalt(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("salt length must be positive")
	}
	max := big.NewInt(int64(len(saltChars)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltChars[n.Int64()])
	}
	return sb.String(), nil
}
