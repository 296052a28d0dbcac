package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo-web/internal/models"
	"todo-web/pkg/database"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewCategoryRepository(db *sql.DB, dialect database.Dialect) *CategoryRepository {
	return &CategoryRepository{db: db, dialect: dialect}
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	category := models.Category{Name: name}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", name,
	).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create category %q: %w", name, ErrUniqueViolation)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// CreateWithID menyimpan kategori dengan id yang ditentukan pemanggil.
// Di PostgreSQL sequence disesuaikan agar id otomatis berikutnya tidak bentrok.
func (r *CategoryRepository) CreateWithID(ctx context.Context, id int, name string) (*models.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES ($1, $2)", id, name); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create category %d %q: %w", id, name, ErrUniqueViolation)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if r.dialect == database.Postgres {
		_, err := tx.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT MAX(id) FROM categories))")
		if err != nil {
			return nil, fmt.Errorf("sync category sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &models.Category{ID: id, Name: name}, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE name = $1", name).
		Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", notFound(err))
	}
	return &category, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int) (*models.Category, error) {
	var category models.Category
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = $1", id).
		Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", notFound(err))
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}
