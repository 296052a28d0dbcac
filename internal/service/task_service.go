package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/pkg/logger"
)

// NewTaskInput represents data required to create a task.
type NewTaskInput struct {
	CategoryID  int
	Description string
	DueDate     models.Date
	Starred     bool
}

// EditTaskInput memakai pointer: nil berarti field tidak diubah.
type EditTaskInput struct {
	Description *string
	DueDate     *string
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks            TaskRepository
	categories       CategoryRepository
	cache            TaskCache
	enforceOwnership bool
}

func NewTaskService(tasks TaskRepository, categories CategoryRepository, cache TaskCache, enforceOwnership bool) *TaskService {
	if cache == nil {
		cache = NopTaskCache{}
	}
	return &TaskService{
		tasks:            tasks,
		categories:       categories,
		cache:            cache,
		enforceOwnership: enforceOwnership,
	}
}

// ListGroupedByCategory mengembalikan satu grup untuk setiap kategori, termasuk yang kosong.
func (s *TaskService) ListGroupedByCategory(ctx context.Context, user *models.User) (models.TaskGroups, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if groups, ok, err := s.cache.Get(ctx, user.ID); err != nil {
		logger.ErrorLogger.Error("Error reading task cache", zap.Int("user_id", user.ID), zap.Error(err))
	} else if ok {
		return groups, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(models.TaskGroups, 0, len(categories))
	for _, category := range categories {
		tasks, err := s.tasks.ListByAuthorAndCategory(ctx, user.ID, category.ID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, models.CategoryTasks{Category: category, Tasks: tasks})
	}

	if err := s.cache.Set(ctx, user.ID, groups); err != nil {
		logger.ErrorLogger.Error("Error caching tasks", zap.Int("user_id", user.ID), zap.Error(err))
	}
	return groups, nil
}

// AddTask membuat task milik user. Kategori yang belum ada dibuat dari daftar pilihan form.
func (s *TaskService) AddTask(ctx context.Context, user *models.User, input NewTaskInput) (*models.Task, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	description, err := cleanDescription(input.Description)
	if err != nil {
		return nil, err
	}
	if input.DueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	category, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		AuthorID:   user.ID,
		Task:       description,
		DueDate:    input.DueDate,
		Selected:   input.Starred,
		CategoryID: category.ID,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, user.ID)
	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", user.ID), zap.Int("category_id", task.CategoryID))
	return &task, nil
}

// resolveCategory mencari kategori berdasarkan id. Bila tidak ada, nama diambil dari
// models.CategoryChoices; kategori bernama sama dipakai ulang, selain itu dibuat
// dengan id yang diminta.
func (s *TaskService) resolveCategory(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	name, ok := models.ChoiceName(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, id)
	}

	category, err = s.categories.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	category, err = s.categories.CreateWithID(ctx, id, name)
	if err != nil {
		return nil, err
	}
	logger.SystemLogger.Info("Category created on demand", zap.Int("id", id), zap.String("name", name))
	// Kategori baru muncul di halaman semua user.
	if flusher, ok := s.cache.(interface{ InvalidateAll(context.Context) error }); ok {
		if err := flusher.InvalidateAll(ctx); err != nil {
			logger.ErrorLogger.Error("Error flushing task cache", zap.Error(err))
		}
	}
	return category, nil
}

// cleanDescription memangkas spasi; hasilnya wajib 1-MaxTaskLength karakter.
func cleanDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" || utf8.RuneCountInString(description) > models.MaxTaskLength {
		return "", ErrInvalidDescription
	}
	return description, nil
}

// EditableTask memastikan task ada dan boleh diubah oleh user.
func (s *TaskService) EditableTask(ctx context.Context, user *models.User, taskID int) (*models.Task, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return s.ownedTask(ctx, user, taskID, "edit")
}

// EditTask mengubah deskripsi dan/atau due date. Keberadaan task diperiksa lebih dulu,
// lalu deskripsi dan tanggal (YYYY-MM-DD) divalidasi.
func (s *TaskService) EditTask(ctx context.Context, user *models.User, taskID int, input EditTaskInput) (*models.Task, error) {
	existing, err := s.EditableTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}

	var patch models.TaskPatch
	if input.Description != nil {
		text, err := cleanDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		patch.Task = &text
	}
	if input.DueDate != nil {
		due, err := models.ParseDate(*input.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
		}
		patch.DueDate = &due
	}

	updated, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, existing.AuthorID)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID), zap.Int("user_id", user.ID))
	return updated, nil
}

// DeleteTask menghapus task berdasarkan id. Tanpa user tidak melakukan apa pun.
func (s *TaskService) DeleteTask(ctx context.Context, user *models.User, taskID int) (bool, error) {
	if user == nil {
		return false, nil
	}

	existing, err := s.ownedTask(ctx, user, taskID, "delete")
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return false, nil
		}
		return false, err
	}

	removed, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidate(ctx, existing.AuthorID)
		logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("user_id", user.ID))
	}
	return removed, nil
}

// ownedTask memuat task. Bila ownership ditegakkan, task milik user lain
// diperlakukan seperti tidak ada.
func (s *TaskService) ownedTask(ctx context.Context, user *models.User, taskID int, action string) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if s.enforceOwnership && task.AuthorID != user.ID {
		logger.SecurityLogger.Warn("Task belongs to another user",
			zap.String("action", action),
			zap.Int("task_id", taskID),
			zap.Int("user_id", user.ID),
			zap.Int("author_id", task.AuthorID),
		)
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) invalidate(ctx context.Context, userID int) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Int("user_id", userID), zap.Error(err))
	}
}

// NopTaskCache dipakai bila Redis tidak dikonfigurasi.
type NopTaskCache struct{}

func (NopTaskCache) Get(context.Context, int) (models.TaskGroups, bool, error) { return nil, false, nil }
func (NopTaskCache) Set(context.Context, int, models.TaskGroups) error         { return nil }
func (NopTaskCache) Invalidate(context.Context, int) error                     { return nil }
