package trip

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/session/inmemory"
)

var bookingIDPattern = regexp.MustCompile(`^TRV-[A-Z0-9]{6}$`)

func newTestManager() *Manager {
	return NewManager(inmemory.NewStore(), 0, nil)
}

func TestGetOrCreateAllocatesAndReuses(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	sess, err := m.GetOrCreate(ctx, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(sess.ID) != 8 {
		t.Fatalf("session id should be 8 characters, got %q", sess.ID)
	}

	again, err := m.GetOrCreate(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reuse: %v", err)
	}
	if again.ID != sess.ID {
		t.Fatalf("expected same session back, got %q vs %q", again.ID, sess.ID)
	}

	fresh, err := m.GetOrCreate(ctx, "missing1")
	if err != nil {
		t.Fatalf("unknown id: %v", err)
	}
	if fresh.ID == "missing1" {
		t.Fatalf("unknown id must allocate a new session, not adopt the requested id")
	}
}

func TestRecordMessageTimestampsIncrease(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	sess, _ := m.GetOrCreate(ctx, "")

	for i := 0; i < 5; i++ {
		if _, err := m.RecordMessage(ctx, sess.ID, models.RoleUser, "hello"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, _ := m.Get(ctx, sess.ID)
	if len(got.History) != 5 {
		t.Fatalf("history length = %d", len(got.History))
	}
	for i := 1; i < len(got.History); i++ {
		if !got.History[i].Timestamp.After(got.History[i-1].Timestamp) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}

func TestAddItemPricing(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	sess, _ := m.GetOrCreate(ctx, "")

	if _, err := m.AddItem(ctx, sess.ID, models.ItemKindFlight, "FL001"); err != nil {
		t.Fatalf("add flight: %v", err)
	}
	got, err := m.AddItem(ctx, sess.ID, models.ItemKindHotel, "HT001")
	if err != nil {
		t.Fatalf("add hotel: %v", err)
	}

	// FL001 is 650, HT001 is 180/night over a default 3-night stay.
	if total := got.TotalCost(); total != 1190 {
		t.Fatalf("total = %v, want 1190", total)
	}

	if _, err := m.AddItem(ctx, sess.ID, models.ItemKindFlight, "FL999"); !errors.Is(err, models.ErrItemNotFound) {
		t.Fatalf("unknown item: %v", err)
	}
	if _, err := m.AddItem(ctx, sess.ID, models.ItemKindGuide, "paris"); !errors.Is(err, models.ErrItemNotFound) {
		t.Fatalf("guides must not be bookable: %v", err)
	}
}

func TestConfirmCreatesBookingOnce(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	sess, _ := m.GetOrCreate(ctx, "")
	_, _ = m.AddItem(ctx, sess.ID, models.ItemKindFlight, "FL001")
	_, _ = m.AddItem(ctx, sess.ID, models.ItemKindHotel, "HT001")
	_, _ = m.ApplyPreferences(ctx, sess.ID, models.Preferences{Destination: "Paris"})

	booking, got, err := m.Confirm(ctx, sess.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if booking == nil {
		t.Fatalf("expected a booking on first confirm")
	}
	if !bookingIDPattern.MatchString(booking.ID) {
		t.Fatalf("booking id %q does not match TRV-XXXXXX", booking.ID)
	}
	if booking.TotalCost != 1190 {
		t.Fatalf("booking total = %v, want 1190", booking.TotalCost)
	}
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("status = %q", booking.Status)
	}
	if booking.Destination != "Paris" {
		t.Fatalf("destination = %q", booking.Destination)
	}
	if !got.Confirmed || got.BookingID != booking.ID {
		t.Fatalf("session not stamped: %+v", got)
	}

	// Second confirm is a no-op against the same booking id.
	second, got2, err := m.Confirm(ctx, sess.ID)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if second != nil {
		t.Fatalf("second confirm must not mint another booking")
	}
	if got2.BookingID != booking.ID {
		t.Fatalf("booking id changed on re-confirm: %q vs %q", got2.BookingID, booking.ID)
	}
}

func TestConfirmRequiresPositiveTotal(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	m := NewManager(store, 0, nil)
	sess, _ := m.GetOrCreate(ctx, "")

	// An itinerary whose items sum to zero is not confirmable.
	sess.Items = []models.LineItem{{Kind: models.ItemKindActivity, ItemID: "comped", Price: 0}}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := m.Confirm(ctx, sess.ID); !errors.Is(err, models.ErrEmptyItinerary) {
		t.Fatalf("expected ErrEmptyItinerary, got %v", err)
	}
	got, _ := m.Get(ctx, sess.ID)
	if got.Confirmed || got.BookingID != "" {
		t.Fatalf("zero-total session must stay unconfirmed: %+v", got)
	}
}

func TestConfirmEmptyItinerary(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	sess, _ := m.GetOrCreate(ctx, "")

	if _, _, err := m.Confirm(ctx, sess.ID); !errors.Is(err, models.ErrEmptyItinerary) {
		t.Fatalf("expected ErrEmptyItinerary, got %v", err)
	}
	got, _ := m.Get(ctx, sess.ID)
	if got.Confirmed || got.BookingID != "" {
		t.Fatalf("failed confirm must not touch the session: %+v", got)
	}
}

func TestSummarizeStates(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	sess, _ := m.GetOrCreate(ctx, "")

	if got := Summarize(sess); !strings.Contains(got, "itinerary is empty") {
		t.Fatalf("empty summary = %q", got)
	}

	_, _ = m.ApplyPreferences(ctx, sess.ID, models.Preferences{Destination: "Paris"})
	_, _ = m.AddItem(ctx, sess.ID, models.ItemKindFlight, "FL001")
	got, _ := m.AddItem(ctx, sess.ID, models.ItemKindHotel, "HT001")

	summary := Summarize(got)
	for _, want := range []string{
		"**Destination:** Paris",
		"SkyWay Airlines: New York (JFK) → Paris (CDG) ($650)",
		"Hotel Le Marais - $180/night",
		"**Estimated Total:** $1190.00",
		"Type **'confirm booking'** to finalize",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}

	_, confirmed, err := m.Confirm(ctx, sess.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if s := Summarize(confirmed); !strings.Contains(s, "✅ **Booking Confirmed!**") {
		t.Fatalf("confirmed summary = %q", s)
	}
}

func sessWithPrefs(prefs models.Preferences) *models.Session {
	return &models.Session{Preferences: prefs}
}

func TestFallbackReplies(t *testing.T) {
	greeting := FallbackReply(IntentGeneral, sessWithPrefs(models.Preferences{}))
	if !strings.Contains(greeting, "Welcome to Travel Concierge") {
		t.Fatalf("greeting = %q", greeting)
	}

	options := FallbackReply(IntentGeneral, sessWithPrefs(models.Preferences{Destination: "Paris"}))
	if !strings.Contains(options, "**Paris**") {
		t.Fatalf("options = %q", options)
	}

	flights := FallbackReply(IntentFlightSearch, sessWithPrefs(models.Preferences{Destination: "Paris"}))
	if !strings.Contains(flights, "FL001") || !strings.Contains(flights, "Available Flights") {
		t.Fatalf("flights = %q", flights)
	}

	// Budget style caps hotels at $150/night, which excludes Grand Plaza.
	hotels := FallbackReply(IntentHotelSearch, sessWithPrefs(models.Preferences{Destination: "Paris", TravelStyle: models.StyleBudget}))
	if strings.Contains(hotels, "HT002") {
		t.Fatalf("budget style must exclude luxury hotels:\n%s", hotels)
	}
	if !strings.Contains(hotels, "HT001") {
		t.Fatalf("expected HT001 in budget results:\n%s", hotels)
	}

	guide := FallbackReply(IntentGuide, sessWithPrefs(models.Preferences{Destination: "Rome"}))
	if !strings.Contains(guide, "Travel Guide: Rome") || !strings.Contains(guide, "Colosseum") {
		t.Fatalf("guide = %q", guide)
	}

	ask := FallbackReply(IntentGuide, sessWithPrefs(models.Preferences{}))
	if !strings.Contains(ask, "Which destination") {
		t.Fatalf("guide without destination = %q", ask)
	}
}

func TestFallbackConfirmReflectsSessionState(t *testing.T) {
	unconfirmed := FallbackReply(IntentConfirm, &models.Session{})
	if !strings.Contains(unconfirmed, "itinerary is empty") {
		t.Fatalf("unconfirmed session must not be told it booked: %q", unconfirmed)
	}

	confirmed := FallbackReply(IntentConfirm, &models.Session{Confirmed: true})
	if !strings.Contains(confirmed, "Your booking has been confirmed") {
		t.Fatalf("confirmed reply = %q", confirmed)
	}
}
