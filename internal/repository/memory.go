package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dastanaron/signupsaver/internal/models"
)

// MemoryStore implements Store in process memory.
// The empty id refers to the root of the tree.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int
	nodes    map[string]models.Node
	children map[string][]string
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		nodes:    make(map[string]models.Node),
		children: make(map[string][]string),
		now:      time.Now,
	}
}

func (s *MemoryStore) Search(_ context.Context, q Query) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ids are handed out in increasing order, walk them that way
	var out []models.Node
	for i := 1; i < s.nextID; i++ {
		n, ok := s.nodes[strconv.Itoa(i)]
		if ok && q.Matches(n) {
			out = append(out, s.withIndex(n))
		}
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, d CreateDetails) (models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ParentID != "" {
		parent, ok := s.nodes[d.ParentID]
		if !ok {
			return models.Node{}, ErrNotFound
		}
		if !parent.IsFolder() {
			return models.Node{}, ErrNotFound
		}
	}

	siblings := s.children[d.ParentID]
	pos := insertPosition(d.Index, len(siblings))

	n := models.Node{
		ID:        strconv.Itoa(s.nextID),
		ParentID:  d.ParentID,
		Title:     d.Title,
		URL:       d.URL,
		DateAdded: s.now(),
	}
	s.nextID++
	s.nodes[n.ID] = n

	siblings = append(siblings, "")
	copy(siblings[pos+1:], siblings[pos:])
	siblings[pos] = n.ID
	s.children[d.ParentID] = siblings

	n.Index = pos
	return n, nil
}

func (s *MemoryStore) GetChildren(_ context.Context, id string) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.nodes[id]; !ok {
			return nil, ErrNotFound
		}
	}

	ids := s.children[id]
	out := make([]models.Node, 0, len(ids))
	for i, childID := range ids {
		n := s.nodes[childID]
		n.Index = i
		out = append(out, n)
	}
	return out, nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return ErrNotFound
	}
	if len(s.children[id]) > 0 {
		return ErrFolderNotEmpty
	}

	siblings := s.children[n.ParentID]
	for i, childID := range siblings {
		if childID == id {
			s.children[n.ParentID] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	delete(s.children, id)
	delete(s.nodes, id)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// withIndex fills in the current position of n among its siblings
func (s *MemoryStore) withIndex(n models.Node) models.Node {
	for i, childID := range s.children[n.ParentID] {
		if childID == n.ID {
			n.Index = i
			break
		}
	}
	return n
}
