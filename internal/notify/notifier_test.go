package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wanderplan/concierge/models"
)

type fakeStore struct {
	bookings      []*models.Booking
	notifications []*models.Notification
	archived      map[string][]models.Message
	failBooking   bool
}

func (f *fakeStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	if f.failBooking {
		return errors.New("db down")
	}
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) ArchiveMessages(ctx context.Context, sessionID string, msgs []models.Message) error {
	if f.archived == nil {
		f.archived = map[string][]models.Message{}
	}
	f.archived[sessionID] = msgs
	return nil
}

type fakeIndexer struct {
	sessions []string
	fail     bool
}

func (f *fakeIndexer) IndexConversation(ctx context.Context, sessionID string, msgs []models.Message) error {
	if f.fail {
		return errors.New("index down")
	}
	f.sessions = append(f.sessions, sessionID)
	return nil
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:          "TRV-ABC123",
		SessionID:   "sess1234",
		Status:      models.BookingStatusConfirmed,
		Destination: "Paris",
		TotalCost:   1190,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestBookingConfirmedFansOut(t *testing.T) {
	store := &fakeStore{}
	idx := &fakeIndexer{}
	n := NewNotifier(store, idx, nil)

	n.BookingConfirmed(context.Background(), testBooking(), []models.Message{{Role: models.RoleUser, Content: "hi"}})

	if len(store.bookings) != 1 || len(store.notifications) != 1 {
		t.Fatalf("fan-out incomplete: %d bookings, %d notifications", len(store.bookings), len(store.notifications))
	}
	notif := store.notifications[0]
	if notif.BookingID != "TRV-ABC123" {
		t.Fatalf("notification booking id = %q", notif.BookingID)
	}
	if len(notif.ID) != 12 {
		t.Fatalf("notification id should be 12 characters, got %q", notif.ID)
	}
	if notif.Data["destination"] != "Paris" || notif.Data["total_cost"] != float64(1190) {
		t.Fatalf("notification data = %v", notif.Data)
	}
	if len(idx.sessions) != 1 || idx.sessions[0] != "sess1234" {
		t.Fatalf("indexer not invoked: %v", idx.sessions)
	}
	if len(store.archived["sess1234"]) != 1 {
		t.Fatalf("transcript not archived: %v", store.archived)
	}
}

func TestBookingConfirmedSwallowsFailures(t *testing.T) {
	store := &fakeStore{failBooking: true}
	idx := &fakeIndexer{fail: true}
	n := NewNotifier(store, idx, nil)

	// Must not panic or error; the notification leg still runs even when
	// the booking write failed.
	n.BookingConfirmed(context.Background(), testBooking(), nil)
	if len(store.notifications) != 1 {
		t.Fatalf("notification leg should still run, got %d", len(store.notifications))
	}
}

func TestBookingConfirmedNilTargets(t *testing.T) {
	n := NewNotifier(nil, nil, nil)
	n.BookingConfirmed(context.Background(), testBooking(), nil)
}
