package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo-web/internal/models"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create menyimpan user baru. Email yang sudah terdaftar menghasilkan ErrUniqueViolation.
func (r *UserRepository) Create(ctx context.Context, email, name, passwordDigest string) (*models.User, error) {
	user := models.User{Email: email, Name: name, Password: passwordDigest}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING id",
		email, passwordDigest, name,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create user %q: %w", email, ErrUniqueViolation)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "SELECT id, email, password, name FROM users WHERE email = $1", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, "SELECT id, email, password, name FROM users WHERE id = $1", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Password, &user.Name)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", notFound(err))
	}
	return &user, nil
}

// Count dipakai test untuk memastikan tidak ada user ganda.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
