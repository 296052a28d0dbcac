package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo-web/pkg/database"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(100) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    name VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id SERIAL PRIMARY KEY,
    name VARCHAR(50) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS to_do_list (
    id SERIAL PRIMARY KEY,
    author_id INT NOT NULL REFERENCES users (id),
    task VARCHAR(250) NOT NULL,
    due_date DATE NOT NULL,
    selected BOOLEAN,
    category_id INT NOT NULL REFERENCES categories (id)
);

CREATE INDEX IF NOT EXISTS idx_to_do_list_author_category ON to_do_list (author_id, category_id, due_date);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email VARCHAR(100) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    name VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(50) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS to_do_list (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author_id INTEGER NOT NULL REFERENCES users (id),
    task VARCHAR(250) NOT NULL,
    due_date DATE NOT NULL,
    selected BOOLEAN,
    category_id INTEGER NOT NULL REFERENCES categories (id)
);

CREATE INDEX IF NOT EXISTS idx_to_do_list_author_category ON to_do_list (author_id, category_id, due_date);
`

// CreateTableIfNotExists membuat tabel users, categories, dan to_do_list.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB, dialect database.Dialect) error {
	query := sqliteSchema
	if dialect == database.Postgres {
		query = postgresSchema
	}

	// go-sqlite3 menjalankan beberapa statement dalam satu Exec, begitu juga lib/pq
	// tanpa parameter.
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DeleteAllTable menghapus semua tabel. Dipakai oleh test.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	query := `
    DROP TABLE IF EXISTS to_do_list;
    DROP TABLE IF EXISTS categories;
    DROP TABLE IF EXISTS users;
    `
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
