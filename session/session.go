// Package session defines the storage capability for live chat sessions. The
// core only depends on the Store interface so it can run against an in-memory
// map in tests and a Redis backend in deployments.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wanderplan/concierge/models"
)

// Store persists sessions keyed by their opaque id.
type Store interface {
	// Get returns the session or models.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Put saves the full session state under its id.
	Put(ctx context.Context, sess *models.Session) error
	// List returns all known sessions, newest first.
	List(ctx context.Context) ([]*models.Session, error)
}

// NewID allocates a short opaque session token (8 hex characters).
func NewID() string {
	return uuid.NewString()[:8]
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// ErrUnsupportedStore is returned for unknown backend names.
func ErrUnsupportedStore(t StoreType) error {
	return fmt.Errorf("unsupported session store type: %s", t)
}
