package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"todo-web/configs"
)

// Dialect adalah nama driver database/sql yang dipakai.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

const sqliteParams = "_foreign_keys=on&_busy_timeout=5000"

var ErrUnsupportedURL = errors.New("unsupported database url")

// ParseURL mengubah URL gaya SQLAlchemy menjadi dialect dan DSN driver.
//
//	sqlite:///to_do_list.db      -> file relatif
//	sqlite:////var/lib/todo.db   -> file absolut
//	sqlite://  atau sqlite:///:memory:
//	postgres://... / postgresql://...
//
// Path tanpa skema dianggap file SQLite.
func ParseURL(raw string) (Dialect, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = configs.DefaultDatabaseURL
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Postgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		// Satu "/" sisa adalah pemisah; path absolut memakai "////".
		path = strings.TrimPrefix(path, "/")
		return SQLite, sqliteDSN(path), nil
	case strings.Contains(raw, "://"):
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	default:
		return SQLite, sqliteDSN(strings.TrimPrefix(raw, "file:")), nil
	}
}

func sqliteDSN(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&" + sqliteParams
	}
	return "file:" + path + "?" + sqliteParams
}

// sqlitePath mengembalikan path file dari DSN, atau "" untuk database memory.
func sqlitePath(dsn string) string {
	if strings.Contains(dsn, ":memory:") {
		return ""
	}
	clean := strings.TrimPrefix(dsn, "file:")
	return strings.Split(clean, "?")[0]
}

// ensureDirForSQLite membuat direktori induk file SQLite bila perlu.
func ensureDirForSQLite(dsn string) error {
	path := sqlitePath(dsn)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// Open membuka dan mem-ping database dari URL.
func Open(ctx context.Context, rawURL string) (*sql.DB, Dialect, error) {
	dialect, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", err
	}

	if dialect == SQLite {
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, "", err
		}
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}

	switch dialect {
	case SQLite:
		// SQLite hanya mengizinkan satu penulis; satu koneksi menghindari "database is locked".
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	return db, dialect, nil
}

func ConnectDB(ctx context.Context, cfg configs.Config) (*sql.DB, Dialect, error) {
	return Open(ctx, cfg.DatabaseURL)
}
