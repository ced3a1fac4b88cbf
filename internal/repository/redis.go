package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds optimistic transaction retries when a watched key changes
const maxTxAttempts = 5

// RedisStore implements Store on top of Redis.
// Nodes are JSON values, each parent keeps an ordered list of child ids.
type RedisStore struct {
	client *redis.Client
	keys   redisKeys
	now    func() time.Time
}

// NewRedisStore wraps a connected client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		keys:   redisKeys{prefix: prefix},
		now:    time.Now,
	}
}

func (s *RedisStore) Search(ctx context.Context, q Query) ([]models.Node, error) {
	ids, err := s.client.SMembers(ctx, s.keys.all()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get node ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sortNumeric(ids)

	nodes, err := s.getNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []models.Node
	for _, n := range nodes {
		if !q.Matches(n) {
			continue
		}
		pos, err := s.client.LPos(ctx, s.keys.children(n.ParentID), n.ID, redis.LPosArgs{}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to locate node %s: %w", n.ID, err)
		}
		n.Index = int(pos)
		out = append(out, n)
	}
	return out, nil
}

func (s *RedisStore) Create(ctx context.Context, d CreateDetails) (models.Node, error) {
	if d.ParentID != "" {
		parent, err := s.getNode(ctx, d.ParentID)
		if err != nil {
			return models.Node{}, err
		}
		if !parent.IsFolder() {
			return models.Node{}, ErrNotFound
		}
	}

	id, err := s.client.Incr(ctx, s.keys.seq()).Result()
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to allocate id: %w", err)
	}

	n := models.Node{
		ID:        strconv.FormatInt(id, 10),
		ParentID:  d.ParentID,
		Title:     d.Title,
		URL:       d.URL,
		DateAdded: s.now().UTC(),
	}
	data, err := json.Marshal(n)
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to marshal node: %w", err)
	}

	listKey := s.keys.children(d.ParentID)
	insert := func(tx *redis.Tx) error {
		count, err := tx.LLen(ctx, listKey).Result()
		if err != nil {
			return err
		}
		pos := insertPosition(d.Index, int(count))

		var pivot string
		if pos < int(count) {
			pivot, err = tx.LIndex(ctx, listKey, int64(pos)).Result()
			if err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keys.node(n.ID), data, 0)
			pipe.SAdd(ctx, s.keys.all(), n.ID)
			if pivot == "" {
				pipe.RPush(ctx, listKey, n.ID)
			} else {
				pipe.LInsertBefore(ctx, listKey, pivot, n.ID)
			}
			return nil
		})
		n.Index = pos
		return err
	}

	if err := s.watch(ctx, insert, listKey); err != nil {
		return models.Node{}, fmt.Errorf("failed to save node: %w", err)
	}
	return n, nil
}

func (s *RedisStore) GetChildren(ctx context.Context, id string) ([]models.Node, error) {
	if id != "" {
		exists, err := s.client.Exists(ctx, s.keys.node(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check node: %w", err)
		}
		if exists == 0 {
			return nil, ErrNotFound
		}
	}

	ids, err := s.client.LRange(ctx, s.keys.children(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	if len(ids) == 0 {
		return []models.Node{}, nil
	}

	nodes, err := s.getNodes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		nodes[i].Index = i
	}
	return nodes, nil
}

func (s *RedisStore) Remove(ctx context.Context, id string) error {
	n, err := s.getNode(ctx, id)
	if err != nil {
		return err
	}

	childrenKey := s.keys.children(id)
	remove := func(tx *redis.Tx) error {
		count, err := tx.LLen(ctx, childrenKey).Result()
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrFolderNotEmpty
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, s.keys.children(n.ParentID), 1, id)
			pipe.Del(ctx, s.keys.node(id), childrenKey)
			pipe.SRem(ctx, s.keys.all(), id)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, remove, childrenKey, s.keys.children(n.ParentID)); err != nil {
		if errors.Is(err, ErrFolderNotEmpty) {
			return err
		}
		return fmt.Errorf("failed to remove node: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *RedisStore) getNode(ctx context.Context, id string) (models.Node, error) {
	data, err := s.client.Get(ctx, s.keys.node(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Node{}, ErrNotFound
		}
		return models.Node{}, fmt.Errorf("failed to get node: %w", err)
	}

	var n models.Node
	if err := json.Unmarshal(data, &n); err != nil {
		return models.Node{}, fmt.Errorf("failed to unmarshal node: %w", err)
	}
	return n, nil
}

// getNodes loads ids in order, skipping ids whose value has vanished
func (s *RedisStore) getNodes(ctx context.Context, ids []string) ([]models.Node, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.node(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}

	nodes := make([]models.Node, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var n models.Node
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func sortNumeric(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
}
