package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/pkg/crypto"
	"todo-web/pkg/database"
)

type fixture struct {
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	tasks      *repository.TaskRepository
	auth       *AuthService
	categorySv *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, "sqlite:///"+filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.CreateTableIfNotExists(ctx, db, dialect))

	hasher, err := crypto.NewHasher("pbkdf2", 1000)
	require.NoError(t, err)

	f := &fixture{
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db, dialect),
		tasks:      repository.NewTaskRepository(db),
	}
	f.auth = NewAuthService(f.users, hasher)
	f.categorySv = NewCategoryService(f.categories)
	return f
}

func (f *fixture) taskService(cache TaskCache, enforceOwnership bool) *TaskService {
	return NewTaskService(f.tasks, f.categories, cache, enforceOwnership)
}

func (f *fixture) register(t *testing.T, email, name string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{Email: email, Name: name, Password: "pw123"})
	require.NoError(t, err)
	return user
}

// mockCache adalah TaskCache berbasis testify/mock.
type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, userID int) (models.TaskGroups, bool, error) {
	args := m.Called(ctx, userID)
	groups, _ := args.Get(0).(models.TaskGroups)
	return groups, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, userID int, groups models.TaskGroups) error {
	return m.Called(ctx, userID, groups).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}
