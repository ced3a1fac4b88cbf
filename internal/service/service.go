package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/repository"
)

// BookmarkService reconciles pages against the store: validate, dedupe, create.
type BookmarkService struct {
	store     repository.Store
	validator TargetValidator
	logger    logger.Logger
	group     singleflight.Group
}

// NewBookmarkService creates a new bookmark service. A nil validator accepts every URL.
func NewBookmarkService(store repository.Store, validator TargetValidator, log logger.Logger) *BookmarkService {
	if validator == nil {
		validator = AcceptAll{}
	}
	return &BookmarkService{
		store:     store,
		validator: validator,
		logger:    log,
	}
}

// Save files the page into folderID unless it is rejected or already bookmarked.
// Duplicates are looked up across the whole store, not only the folder.
func (s *BookmarkService) Save(ctx context.Context, title, url, folderID string) (models.SaveResult, error) {
	// a node without a URL is a folder
	if strings.TrimSpace(url) == "" {
		s.logger.Debug("bookmark rejected: empty url", logger.String("title", title))
		return models.SaveResult{Outcome: models.OutcomeRejected}, nil
	}
	if err := s.validator.Validate(url); err != nil {
		if !errors.Is(err, ErrInvalidTarget) {
			return models.SaveResult{}, err
		}
		s.logger.Debug("bookmark rejected",
			logger.String("url", url),
			logger.Error(err))
		return models.SaveResult{Outcome: models.OutcomeRejected}, nil
	}

	v, err, _ := s.group.Do(title+"\x00"+url, func() (interface{}, error) {
		return s.reconcile(ctx, title, url, folderID)
	})
	if err != nil {
		return models.SaveResult{}, err
	}
	return v.(models.SaveResult), nil
}

func (s *BookmarkService) reconcile(ctx context.Context, title, url, folderID string) (models.SaveResult, error) {
	existing, err := s.store.Search(ctx, repository.Query{Title: title, URL: url})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("search bookmark: %w", err)
	}
	// an empty title leaves the store query on URL alone
	for _, n := range existing {
		if n.Title != title || n.URL != url {
			continue
		}
		s.logger.Debug("bookmark already exists",
			logger.String("id", n.ID),
			logger.String("url", url))
		return models.SaveResult{
			Bookmark: models.BookmarkFromNode(n),
			Outcome:  models.OutcomeDuplicate,
		}, nil
	}

	created, err := s.store.Create(ctx, repository.CreateDetails{
		ParentID: folderID,
		Index:    repository.IndexPtr(0),
		Title:    title,
		URL:      url,
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("create bookmark: %w", err)
	}
	s.logger.Info("bookmark created",
		logger.String("id", created.ID),
		logger.String("folder_id", folderID),
		logger.String("url", url))

	return models.SaveResult{
		Bookmark: models.BookmarkFromNode(created),
		Outcome:  models.OutcomeCreated,
	}, nil
}

// List returns the bookmarks of folderID in store order; subfolders are skipped
func (s *BookmarkService) List(ctx context.Context, folderID string) ([]models.Bookmark, error) {
	nodes, err := s.store.GetChildren(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	bookmarks := make([]models.Bookmark, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			continue
		}
		bookmarks = append(bookmarks, models.BookmarkFromNode(n))
	}
	return bookmarks, nil
}

// Delete deletes a bookmark by ID
func (s *BookmarkService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove bookmark %s: %w", id, err)
	}
	s.logger.Info("bookmark removed", logger.String("id", id))
	return nil
}
