package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wanderplan/concierge/models"
)

// Memory is the no-database Backend. Bookings and notifications live in
// process memory; contents are copied on the way in and out so callers
// cannot alias internal state.
type Memory struct {
	mu            sync.RWMutex
	bookings      map[string]*models.Booking
	notifications []*models.Notification
	archives      map[string][]models.Message
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		bookings: map[string]*models.Booking{},
		archives: map[string][]models.Message{},
	}
}

func (m *Memory) SaveBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *Memory) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) SaveNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *Memory) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ArchiveMessages(ctx context.Context, sessionID string, msgs []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[sessionID] = append([]models.Message(nil), msgs...)
	return nil
}

func (m *Memory) ListArchivedMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Message(nil), m.archives[sessionID]...), nil
}
