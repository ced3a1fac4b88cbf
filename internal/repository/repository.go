package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/dastanaron/signupsaver/internal/models"
)

var (
	// ErrNotFound is returned when a node id does not exist
	ErrNotFound = errors.New("node not found")
	// ErrFolderNotEmpty is returned when removing a folder that still has children
	ErrFolderNotEmpty = errors.New("folder is not empty")
)

// Query selects nodes in Search.
// Every word of Query must occur in the title or URL (case-insensitive).
// Title and URL, when not empty, must match exactly.
type Query struct {
	Query string
	Title string
	URL   string
}

// CreateDetails describes a node to create.
// A nil Index appends to the end of the parent's children.
type CreateDetails struct {
	ParentID string
	Index    *int
	Title    string
	URL      string
}

// Store is the bookmark store capability the application is built on
type Store interface {
	Search(ctx context.Context, q Query) ([]models.Node, error)
	Create(ctx context.Context, d CreateDetails) (models.Node, error)
	GetChildren(ctx context.Context, id string) ([]models.Node, error)
	Remove(ctx context.Context, id string) error
	Close() error
}

// Matches reports whether n satisfies q
func (q Query) Matches(n models.Node) bool {
	if q.Title != "" && n.Title != q.Title {
		return false
	}
	if q.URL != "" && n.URL != q.URL {
		return false
	}
	for _, word := range q.words() {
		if !strings.Contains(strings.ToLower(n.Title), word) &&
			!strings.Contains(strings.ToLower(n.URL), word) {
			return false
		}
	}
	return true
}

func (q Query) words() []string {
	return strings.Fields(strings.ToLower(q.Query))
}

// insertPosition clamps a requested index to [0, count]
func insertPosition(index *int, count int) int {
	if index == nil || *index > count {
		return count
	}
	if *index < 0 {
		return 0
	}
	return *index
}

// IndexPtr is a helper for CreateDetails.Index
func IndexPtr(i int) *int {
	return &i
}
