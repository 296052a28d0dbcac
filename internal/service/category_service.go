package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/pkg/logger"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Bootstrap memastikan kategori default ada. Aman dipanggil setiap startup.
func (s *CategoryService) Bootstrap(ctx context.Context) error {
	for _, name := range models.DefaultCategories {
		_, err := s.repo.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		category, err := s.repo.Create(ctx, name)
		if err != nil {
			// Proses lain sudah membuatnya lebih dulu.
			if errors.Is(err, repository.ErrUniqueViolation) {
				continue
			}
			return fmt.Errorf("bootstrap category %q: %w", name, err)
		}
		logger.SystemLogger.Info("Category created", zap.Int("id", category.ID), zap.String("name", name))
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}
