package service

import (
	"context"
	"errors"
	"fmt"

	"todo-web/internal/models"
)

// Interface per entity, dipenuhi oleh package repository dan mudah di-mock di test.

type UserRepository interface {
	Create(ctx context.Context, email, name, passwordDigest string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	CreateWithID(ctx context.Context, id int, name string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByID(ctx context.Context, id int) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id int) (*models.Task, error)
	ListByAuthorAndCategory(ctx context.Context, authorID, categoryID int) ([]models.Task, error)
	Update(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// TaskCache menyimpan hasil ListGroupedByCategory per user.
type TaskCache interface {
	Get(ctx context.Context, userID int) (models.TaskGroups, bool, error)
	Set(ctx context.Context, userID int, groups models.TaskGroups) error
	Invalidate(ctx context.Context, userID int) error
}

// PasswordHasher menghasilkan digest password baru.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

var (
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrNotFoundCredential = errors.New("invalid credentials")
	ErrEmailNotFound      = fmt.Errorf("%w: email not found", ErrNotFoundCredential)
	ErrPasswordIncorrect  = fmt.Errorf("%w: password incorrect", ErrNotFoundCredential)
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrInvalidDescription = fmt.Errorf("%w: task description must be 1-%d characters", ErrInvalidFormat, models.MaxTaskLength)
	ErrInvalidDueDate     = fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrInvalidFormat)
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnauthenticated    = errors.New("not authenticated")
)
