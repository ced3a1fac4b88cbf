package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/signupsaver/internal/config"
	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/repository"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Store = config.StoreMemory
		store, err := OpenStore(ctx, cfg, logger.Nop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &repository.MemoryStore{}, store)
	})

	t.Run("sqlite creates directory", func(t *testing.T) {
		cfg := config.NewConfig().WithDBPath(filepath.Join(t.TempDir(), "nested", "dir", "s.db"))
		store, err := OpenStore(ctx, cfg, logger.Nop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &repository.SQLiteStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Store = "mongo"
		_, err := OpenStore(ctx, cfg, logger.Nop())
		assert.Error(t, err)
	})
}

func TestNewServices(t *testing.T) {
	ctx := context.Background()
	url := "https://example.com/page"

	for _, strict := range []bool{false, true} {
		cfg := config.NewConfig()
		cfg.Strict = strict

		svc, err := NewServices(repository.NewMemoryStore(), cfg, logger.Nop())
		require.NoError(t, err)

		folderID, err := svc.Folders.Resolve(ctx, cfg.FolderName)
		require.NoError(t, err)
		res, err := svc.Bookmarks.Save(ctx, "Page", url, folderID)
		require.NoError(t, err)

		want := models.OutcomeCreated
		if strict {
			want = models.OutcomeRejected
		}
		assert.Equal(t, want, res.Outcome, "strict=%v", strict)
	}
}

func TestNewServices_BadPattern(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Strict = true
	cfg.TargetPattern = "(["

	_, err := NewServices(repository.NewMemoryStore(), cfg, logger.Nop())
	assert.Error(t, err)
}
