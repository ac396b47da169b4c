package models

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the core. Callers match with errors.Is.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrItemNotFound         = errors.New("catalog item not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrEmptyItinerary       = errors.New("itinerary is empty")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)

// ItemKind distinguishes the four catalog document types. Only flight, hotel
// and activity are bookable; guides are retrieval-only.
type ItemKind string

const (
	ItemKindFlight   ItemKind = "flight"
	ItemKindHotel    ItemKind = "hotel"
	ItemKindActivity ItemKind = "activity"
	ItemKindGuide    ItemKind = "guide"
)

func (k ItemKind) Bookable() bool {
	switch k {
	case ItemKindFlight, ItemKindHotel, ItemKindActivity:
		return true
	}
	return false
}

// Travel styles recognised by preference extraction.
const (
	StyleBudget   = "budget"
	StyleModerate = "moderate"
	StyleLuxury   = "luxury"
)

// Preferences holds everything we have learned about a trip so far. All
// fields are optional; the zero value means "unknown".
type Preferences struct {
	Destination string   `json:"destination,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	TravelStyle string   `json:"travel_style,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// Merge folds a partial update into p. A known value is only replaced by a
// newly extracted non-empty value; an absent field in the update never clears
// what an earlier turn established. Interests accumulate without duplicates.
func (p Preferences) Merge(update Preferences) Preferences {
	if update.Destination != "" {
		p.Destination = update.Destination
	}
	if update.Origin != "" {
		p.Origin = update.Origin
	}
	if update.StartDate != "" {
		p.StartDate = update.StartDate
	}
	if update.EndDate != "" {
		p.EndDate = update.EndDate
	}
	if update.Budget > 0 {
		p.Budget = update.Budget
	}
	if update.TravelStyle != "" {
		p.TravelStyle = update.TravelStyle
	}
	for _, in := range update.Interests {
		seen := false
		for _, have := range p.Interests {
			if have == in {
				seen = true
				break
			}
		}
		if !seen {
			p.Interests = append(p.Interests, in)
		}
	}
	return p
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn. History ordering is by timestamp.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// LineItem is one bookable unit added to an itinerary. Payload is a snapshot
// of the catalog record at the time it was added.
type LineItem struct {
	Kind    ItemKind               `json:"kind"`
	ItemID  string                 `json:"item_id"`
	Payload map[string]interface{} `json:"payload"`
	Price   float64                `json:"price"`
}

// Customer is optional contact info collected before confirmation.
type Customer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Session is the per-conversation state: accumulated preferences, itinerary
// line items and chat history, plus the confirmation flag. Confirmed is
// monotonic and BookingID is write-once.
type Session struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	Preferences Preferences `json:"preferences"`
	Items       []LineItem  `json:"items"`
	History     []Message   `json:"history"`
	Confirmed   bool        `json:"confirmed"`
	BookingID   string      `json:"booking_id,omitempty"`
	Customer    Customer    `json:"customer,omitempty"`
}

// TotalCost recomputes the itinerary total from the line items. It is never
// cached on the session, so it cannot drift.
func (s *Session) TotalCost() float64 {
	var total float64
	for _, it := range s.Items {
		total += it.Price
	}
	return total
}

// ItemsOfKind returns the line items of one kind in insertion order.
func (s *Session) ItemsOfKind(kind ItemKind) []LineItem {
	var out []LineItem
	for _, it := range s.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// BookingStatus is the lifecycle of a confirmed booking. Sessions never leave
// the confirmed state; status changes apply to the Booking record only.
type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusProcessing BookingStatus = "processing"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusProcessing, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is the immutable record created exactly once per session when it
// confirms. Only Status may change afterwards, via an admin operation.
type Booking struct {
	ID          string        `json:"booking_id"`
	SessionID   string        `json:"session_id"`
	Status      BookingStatus `json:"status"`
	Destination string        `json:"destination,omitempty"`
	Preferences Preferences   `json:"preferences"`
	Items       []LineItem    `json:"itinerary"`
	TotalCost   float64       `json:"total_cost"`
	ChatSummary string        `json:"chat_summary,omitempty"`
	Customer    Customer      `json:"customer,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Notification is the admin-facing record emitted alongside a new booking.
type Notification struct {
	ID        string                 `json:"id"`
	BookingID string                 `json:"booking_id"`
	CreatedAt time.Time              `json:"created_at"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
