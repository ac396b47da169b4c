package redis_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/session"
)

const keyPrefix = "concierge:session:"

type Store struct {
	client *redis.Client
}

func NewStore(addr, password string, db int) session.Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb}
}

// NewStoreWithClient wraps an existing client, used when the caller owns the
// connection lifecycle.
func NewStoreWithClient(client *redis.Client) session.Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) Put(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	// Sessions are never expired in this scope; retention is out of scope.
	return s.client.Set(ctx, keyPrefix+sess.ID, data, 0).Err()
}

func (s *Store) List(ctx context.Context) ([]*models.Session, error) {
	var out []*models.Session
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		val, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var sess models.Session
		if err := json.Unmarshal([]byte(val), &sess); err != nil {
			continue
		}
		out = append(out, &sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
