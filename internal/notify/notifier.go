// Package notify fans a freshly minted booking out to the admin surfaces:
// the persistent booking/notification store and the conversation search
// index. Delivery is at-least-once in spirit but never blocks the chat
// reply; every failure is logged and swallowed.
package notify

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/wanderplan/concierge/models"
)

// BookingStore is the persistence half of the fan-out.
type BookingStore interface {
	SaveBooking(ctx context.Context, b *models.Booking) error
	SaveNotification(ctx context.Context, n *models.Notification) error
	ArchiveMessages(ctx context.Context, sessionID string, msgs []models.Message) error
}

// ConversationIndexer makes the session transcript searchable by admins.
type ConversationIndexer interface {
	IndexConversation(ctx context.Context, sessionID string, messages []models.Message) error
}

// Notifier wires the two targets. Either may be nil, in which case that leg
// is skipped.
type Notifier struct {
	store   BookingStore
	indexer ConversationIndexer
	logger  *log.Logger
}

func NewNotifier(store BookingStore, indexer ConversationIndexer, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[NOTIFY] ", log.LstdFlags)
	}
	return &Notifier{store: store, indexer: indexer, logger: logger}
}

// BookingConfirmed records the booking, emits its admin notification and
// indexes the conversation transcript. It never returns an error: the
// booking itself already lives on the session, so a failed leg here loses
// an admin convenience, not the booking.
func (n *Notifier) BookingConfirmed(ctx context.Context, booking *models.Booking, history []models.Message) {
	if n.store != nil {
		if err := n.store.SaveBooking(ctx, booking); err != nil {
			n.logger.Printf("save booking %s failed: %v", booking.ID, err)
		}
		notification := &models.Notification{
			ID:        uuid.NewString()[:12],
			BookingID: booking.ID,
			CreatedAt: booking.CreatedAt,
			Data: map[string]interface{}{
				"destination": booking.Destination,
				"total_cost":  booking.TotalCost,
			},
		}
		if err := n.store.SaveNotification(ctx, notification); err != nil {
			n.logger.Printf("save notification for booking %s failed: %v", booking.ID, err)
		}
		// Transcript archive survives session-store eviction.
		if err := n.store.ArchiveMessages(ctx, booking.SessionID, history); err != nil {
			n.logger.Printf("archive transcript %s failed: %v", booking.SessionID, err)
		}
	}
	if n.indexer != nil {
		if err := n.indexer.IndexConversation(ctx, booking.SessionID, history); err != nil {
			n.logger.Printf("index conversation %s failed: %v", booking.SessionID, err)
		}
	}
}
