package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dastanaron/signupsaver/internal/config"
	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/redisconn"
	"github.com/dastanaron/signupsaver/internal/repository"
	"github.com/dastanaron/signupsaver/internal/service"
)

// OpenStore opens the store selected by cfg.Store
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		// Ensure database directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return repository.NewSQLiteStore(cfg.DBPath)
	case config.StoreRedis:
		opts := redisconn.DefaultOptions(cfg.RedisAddr)
		opts.Password = cfg.RedisPassword
		opts.DB = cfg.RedisDB
		client, err := redisconn.Connect(ctx, opts, log)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisStore(client, cfg.RedisPrefix), nil
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Services groups the folder resolver and the reconciler built over one store
type Services struct {
	Folders   *service.FolderService
	Bookmarks *service.BookmarkService
}

// NewServices builds the services; cfg.Strict turns on target validation
func NewServices(store repository.Store, cfg *config.Config, log logger.Logger) (*Services, error) {
	var validator service.TargetValidator = service.AcceptAll{}
	if cfg.Strict {
		v, err := service.NewPatternValidator(cfg.TargetPattern)
		if err != nil {
			return nil, err
		}
		validator = v
	}

	return &Services{
		Folders:   service.NewFolderService(store, log),
		Bookmarks: service.NewBookmarkService(store, validator, log),
	}, nil
}
