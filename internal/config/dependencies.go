package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"todo-web/configs"
	"todo-web/internal/cache"
	"todo-web/internal/repository"
	"todo-web/internal/service"
	"todo-web/internal/session"
	"todo-web/pkg/crypto"
	"todo-web/pkg/database"
	"todo-web/pkg/logger"
)

// Dependencies berisi semua dependency yang dipakai handler.
type Dependencies struct {
	Config  configs.Config
	DB      *sql.DB
	Dialect database.Dialect
	Redis   *redis.Client

	Validate *validator.Validate
	Sessions *session.Manager

	Auth       *service.AuthService
	Categories *service.CategoryService
	Tasks      *service.TaskService
}

// NewDependencies membuka database (dan Redis bila dikonfigurasi), membuat tabel,
// lalu menyusun repository, service dan session manager.
func NewDependencies(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	db, dialect, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Config: cfg, DB: db, Dialect: dialect, Validate: validator.New()}

	if err := repository.CreateTableIfNotExists(ctx, db, dialect); err != nil {
		deps.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	deps.Redis, err = database.ConnectRedis(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}

	hasher, err := crypto.NewHasher(cfg.PasswordScheme, cfg.PBKDF2Iterations)
	if err != nil {
		deps.Close()
		return nil, err
	}

	var (
		taskCache service.TaskCache
		revoker   session.Revoker
	)
	if deps.Redis != nil {
		taskCache = cache.NewRedisTaskCache(deps.Redis, cache.DefaultTTL)
		revoker = session.NewRedisRevoker(deps.Redis)
		logger.SystemLogger.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
	}

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db, dialect)
	tasks := repository.NewTaskRepository(db)

	deps.Auth = service.NewAuthService(users, hasher)
	deps.Categories = service.NewCategoryService(categories)
	deps.Tasks = service.NewTaskService(tasks, categories, taskCache, cfg.EnforceTaskOwnership)
	deps.Sessions = session.NewManager([]byte(cfg.SecretKey), cfg.SessionTTL, cfg.CookieSecure, revoker)

	logger.SystemLogger.Info("Database connected", zap.String("dialect", string(dialect)))
	return deps, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			logger.ErrorLogger.Error("Error closing redis", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			logger.ErrorLogger.Error("Error closing database", zap.Error(err))
		}
	}
}
