package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/session"
)

type Store struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func NewStore() session.Store {
	return &Store{sessions: make(map[string]*models.Session)}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return clone(sess), nil
}

func (s *Store) Put(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = clone(sess)
	return nil
}

func (s *Store) List(ctx context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, clone(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// clone round-trips through JSON so callers mutate a private copy, matching
// the get-modify-put semantics of the Redis backend.
func clone(sess *models.Session) *models.Session {
	data, _ := json.Marshal(sess)
	var out models.Session
	_ = json.Unmarshal(data, &out)
	return &out
}
