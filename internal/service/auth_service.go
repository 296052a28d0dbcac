package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/pkg/crypto"
	"todo-web/pkg/logger"
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// AuthService mendaftarkan dan mengautentikasi user.
type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
}

func NewAuthService(users UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Register membuat user baru. Email yang sudah ada menghasilkan ErrAlreadyRegistered
// tanpa membuat baris baru.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrAlreadyRegistered
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, strings.TrimSpace(input.Name), digest)
	if err != nil {
		// Register bersamaan dengan email yang sama bisa lolos pengecekan di atas.
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Login memeriksa email dan password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", email))
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if !crypto.Verify(password, user.Password) {
		logger.SecurityLogger.Warn("Invalid password", zap.Int("user_id", user.ID))
		return nil, ErrPasswordIncorrect
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return user, nil
}

// UserByID dipakai middleware session untuk memuat current user.
func (s *AuthService) UserByID(ctx context.Context, id int) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}
