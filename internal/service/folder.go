package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/repository"
)

// FolderService finds or lazily creates the folder bookmarks are saved into
type FolderService struct {
	store  repository.Store
	logger logger.Logger
	group  singleflight.Group
}

// NewFolderService creates a new folder service
func NewFolderService(store repository.Store, log logger.Logger) *FolderService {
	return &FolderService{store: store, logger: log}
}

// Find returns the id of the first folder titled name, or "" if there is none
func (s *FolderService) Find(ctx context.Context, name string) (string, error) {
	nodes, err := s.store.Search(ctx, repository.Query{Query: name, Title: name})
	if err != nil {
		return "", fmt.Errorf("search folder: %w", err)
	}
	for _, n := range nodes {
		if n.IsFolder() {
			return n.ID, nil
		}
	}
	return "", nil
}

// Resolve returns the id of the folder titled name, creating it when missing.
// Concurrent calls for the same name share one lookup so only one folder is created.
func (s *FolderService) Resolve(ctx context.Context, name string) (string, error) {
	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		id, err := s.Find(ctx, name)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}

		folder, err := s.store.Create(ctx, repository.CreateDetails{Title: name})
		if err != nil {
			return "", fmt.Errorf("create folder: %w", err)
		}
		s.logger.Info("folder created",
			logger.String("id", folder.ID),
			logger.String("name", name))
		return folder.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
