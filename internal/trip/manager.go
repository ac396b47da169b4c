package trip

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/wanderplan/concierge/catalog"
	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/session"
)

const bookingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultNights is the assumed length of a hotel stay when no dates are
// known; hotel line items are priced per-night times this.
const DefaultNights = 3

// Manager owns all writes to session state. Every mutation is a
// load-modify-store against the session.Store, serialized per session so
// concurrent requests on one conversation cannot interleave.
type Manager struct {
	store  session.Store
	nights int
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store session.Store, nights int, logger *log.Logger) *Manager {
	if nights <= 0 {
		nights = DefaultNights
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[TRIP] ", log.LstdFlags)
	}
	return &Manager{store: store, nights: nights, logger: logger, locks: map[string]*sync.Mutex{}}
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// GetOrCreate resolves the session for a chat turn. An empty or unknown id
// allocates a fresh session; a known id returns the stored state.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*models.Session, error) {
	if id != "" {
		sess, err := m.store.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if err != models.ErrSessionNotFound {
			return nil, err
		}
	}
	sess := &models.Session{ID: session.NewID(), CreatedAt: time.Now().UTC()}
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get returns the stored session or models.ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	return m.store.Get(ctx, id)
}

// List returns every session, newest first.
func (m *Manager) List(ctx context.Context) ([]*models.Session, error) {
	return m.store.List(ctx)
}

// RecordMessage appends one chat turn to the session history. Timestamps are
// assigned here and kept strictly increasing so history order is total even
// when turns land within the same clock tick.
func (m *Manager) RecordMessage(ctx context.Context, id, role, content string) (*models.Session, error) {
	return m.update(ctx, id, func(sess *models.Session) error {
		ts := time.Now().UTC()
		if n := len(sess.History); n > 0 && !ts.After(sess.History[n-1].Timestamp) {
			ts = sess.History[n-1].Timestamp.Add(time.Microsecond)
		}
		sess.History = append(sess.History, models.Message{Role: role, Content: content, Timestamp: ts})
		return nil
	})
}

// ApplyPreferences merges a partial preference update into the session.
func (m *Manager) ApplyPreferences(ctx context.Context, id string, update models.Preferences) (*models.Session, error) {
	return m.update(ctx, id, func(sess *models.Session) error {
		sess.Preferences = sess.Preferences.Merge(update)
		return nil
	})
}

// SetCustomer stores contact info collected ahead of confirmation.
func (m *Manager) SetCustomer(ctx context.Context, id string, cust models.Customer) (*models.Session, error) {
	return m.update(ctx, id, func(sess *models.Session) error {
		sess.Customer = cust
		return nil
	})
}

// AddItem resolves a catalog item and appends it to the itinerary. Hotels
// are priced per-night times the configured stay length; flights and
// activities at unit price. Unknown or non-bookable items return
// models.ErrItemNotFound and leave the session untouched.
func (m *Manager) AddItem(ctx context.Context, id string, kind models.ItemKind, itemID string) (*models.Session, error) {
	item, err := catalog.Lookup(kind, itemID)
	if err != nil {
		return nil, err
	}
	price := item.UnitPrice
	if kind == models.ItemKindHotel {
		price = item.UnitPrice * float64(m.nights)
	}
	return m.update(ctx, id, func(sess *models.Session) error {
		sess.Items = append(sess.Items, models.LineItem{
			Kind: kind, ItemID: itemID, Payload: item.Payload, Price: price,
		})
		return nil
	})
}

// Confirm transitions a session whose itinerary has at least one line item
// and a positive total into the confirmed state and mints its booking
// record. The transition happens at
// most once: a session that is already confirmed returns (nil, sess, nil)
// so callers can tell no new booking was created. An empty itinerary
// returns models.ErrEmptyItinerary.
func (m *Manager) Confirm(ctx context.Context, id string) (*models.Booking, *models.Session, error) {
	var booking *models.Booking
	sess, err := m.update(ctx, id, func(sess *models.Session) error {
		if sess.Confirmed {
			return nil
		}
		if len(sess.Items) == 0 || sess.TotalCost() <= 0 {
			return models.ErrEmptyItinerary
		}
		now := time.Now().UTC()
		sess.Confirmed = true
		sess.BookingID = newBookingID()
		booking = &models.Booking{
			ID:          sess.BookingID,
			SessionID:   sess.ID,
			Status:      models.BookingStatusConfirmed,
			Destination: sess.Preferences.Destination,
			Preferences: sess.Preferences,
			Items:       sess.Items,
			TotalCost:   sess.TotalCost(),
			ChatSummary: fmt.Sprintf("Customer had %d messages", len(sess.History)),
			Customer:    sess.Customer,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if booking != nil {
		m.logger.Printf("session %s confirmed as booking %s (total $%.2f)", sess.ID, booking.ID, booking.TotalCost)
	}
	return booking, sess, nil
}

func (m *Manager) update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return sess, nil
}

// newBookingID mints a reference like TRV-8H2K1Q.
func newBookingID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = bookingIDAlphabet[rand.Intn(len(bookingIDAlphabet))]
	}
	return "TRV-" + string(b)
}
