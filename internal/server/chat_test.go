package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wanderplan/concierge/internal/notify"
	"github.com/wanderplan/concierge/internal/store"
	"github.com/wanderplan/concierge/internal/trip"
	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/session/inmemory"
)

// fakeProvider returns canned replies; extraction delegates to the rule
// based extractor so tests exercise the same merge path as production.
type fakeProvider struct {
	reply string
	fail  bool
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, systemPrompt, contextBlock string, history []models.Message, userMessage string) (string, error) {
	if f.fail {
		return "", context.DeadlineExceeded
	}
	return f.reply, nil
}

func (f *fakeProvider) ExtractPreferences(ctx context.Context, message string, current models.Preferences) (models.Preferences, error) {
	return trip.ExtractPreferences(message), nil
}

func (f *fakeProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type testEnv struct {
	e       *echo.Echo
	backend *store.Memory
	chat    *ChatHandler
	admin   *AdminHandler
}

func newTestEnv(t *testing.T, prov *fakeProvider) *testEnv {
	t.Helper()
	backend := store.NewMemory()
	manager := trip.NewManager(inmemory.NewStore(), 0, nil)
	notifier := notify.NewNotifier(backend, nil, nil)

	ch := &ChatHandler{Manager: manager, Notifier: notifier}
	if prov != nil {
		ch.Provider = prov
	}
	ah := &AdminHandler{Backend: backend, Manager: manager}

	e := newEcho(false)
	api := e.Group("/api")
	ch.Register(api)
	ah.Register(api.Group("/admin"))
	return &testEnv{e: e, backend: backend, chat: ch, admin: ah}
}

func (env *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, decoded
}

var bookingRefPattern = regexp.MustCompile(`^TRV-[A-Z0-9]{6}$`)

func TestChatWithoutProviderFallsBack(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(resp["response"].(string), "Welcome to Travel Concierge") {
		t.Fatalf("expected greeting, got %q", resp["response"])
	}
	if resp["intent"] != "general" {
		t.Fatalf("intent = %v", resp["intent"])
	}
	if id := resp["session_id"].(string); len(id) != 8 {
		t.Fatalf("session id = %q", id)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	rec, _ := env.do(t, http.MethodPost, "/api/chat", `{"message":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBookingLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{reply: "Sounds great!"})

	// Open the session with a destination.
	_, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"I want to plan a trip to Paris"}`)
	sessionID := resp["session_id"].(string)
	prefs := resp["preferences"].(map[string]interface{})
	if prefs["destination"] != "Paris" {
		t.Fatalf("destination not extracted: %v", prefs)
	}

	// Add a flight and a hotel.
	rec, _ := env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"flight","item_id":"FL001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("book flight: %d %s", rec.Code, rec.Body.String())
	}
	rec, bookResp := env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"hotel","item_id":"HT001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("book hotel: %d", rec.Code)
	}
	if !strings.Contains(bookResp["itinerary_summary"].(string), "**Estimated Total:** $1190.00") {
		t.Fatalf("summary = %v", bookResp["itinerary_summary"])
	}

	// Confirm.
	rec, confirmResp := env.do(t, http.MethodPost, "/api/chat", `{"message":"confirm booking","session_id":"`+sessionID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", rec.Code, rec.Body.String())
	}
	if confirmResp["confirmed"] != true {
		t.Fatalf("confirmed = %v", confirmResp["confirmed"])
	}
	bookingID := confirmResp["booking_id"].(string)
	if !bookingRefPattern.MatchString(bookingID) {
		t.Fatalf("booking id = %q", bookingID)
	}

	// The fan-out reached the booking store.
	booking, err := env.backend.GetBooking(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("stored booking: %v", err)
	}
	if booking.TotalCost != 1190 {
		t.Fatalf("stored total = %v", booking.TotalCost)
	}
	notifs, _ := env.backend.ListNotifications(context.Background())
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d", len(notifs))
	}
	if notifs[0].Data["total_cost"] != float64(1190) {
		t.Fatalf("notification data = %v", notifs[0].Data)
	}

	// Confirming again keeps the same booking id and mints nothing new.
	_, again := env.do(t, http.MethodPost, "/api/chat", `{"message":"confirm booking","session_id":"`+sessionID+`"}`)
	if again["booking_id"] != bookingID {
		t.Fatalf("booking id changed: %v", again["booking_id"])
	}
	all, _ := env.backend.ListBookings(context.Background())
	if len(all) != 1 {
		t.Fatalf("bookings = %d", len(all))
	}
}

func TestConfirmWithEmptyItinerary(t *testing.T) {
	env := newTestEnv(t, nil)
	_, opened := env.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	sessionID := opened["session_id"].(string)

	rec, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"confirm booking","session_id":"`+sessionID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp["confirmed"] != false || resp["booking_id"] != "" {
		t.Fatalf("empty confirm must be a no-op: %v", resp)
	}
	reply := resp["response"].(string)
	if strings.Contains(reply, "has been confirmed") {
		t.Fatalf("reply claims a booking that never happened: %q", reply)
	}
	if !strings.Contains(reply, "itinerary is empty") {
		t.Fatalf("reply should say the itinerary is empty: %q", reply)
	}
}

func TestConfirmWithoutProviderReportsBooking(t *testing.T) {
	env := newTestEnv(t, nil)
	_, opened := env.do(t, http.MethodPost, "/api/chat", `{"message":"trip to Paris"}`)
	sessionID := opened["session_id"].(string)

	rec, _ := env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"flight","item_id":"FL001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("book: %d %s", rec.Code, rec.Body.String())
	}

	rec, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"confirm booking","session_id":"`+sessionID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d", rec.Code)
	}
	if resp["confirmed"] != true {
		t.Fatalf("confirmed = %v", resp["confirmed"])
	}
	if reply := resp["response"].(string); !strings.Contains(reply, "Your booking has been confirmed") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestBookErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, _ := env.do(t, http.MethodPost, "/api/book", `{"session_id":"nope1234","item_type":"flight","item_id":"FL001"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: %d", rec.Code)
	}

	_, opened := env.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	sessionID := opened["session_id"].(string)

	rec, _ = env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"flight","item_id":"FL999"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown item: %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"guide","item_id":"paris"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("guides are not bookable: %d", rec.Code)
	}
}

func TestChatProviderFailureFallsBack(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{fail: true})

	rec, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"show me flights to Paris"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(resp["response"].(string), "Available Flights") {
		t.Fatalf("expected catalog fallback, got %q", resp["response"])
	}
}

func TestItineraryAndCustomerInfo(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, _ := env.do(t, http.MethodGet, "/api/itinerary/missing1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: %d", rec.Code)
	}

	_, opened := env.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	sessionID := opened["session_id"].(string)
	env.do(t, http.MethodPost, "/api/book", `{"session_id":"`+sessionID+`","item_type":"activity","item_id":"AC001"}`)

	rec, itin := env.do(t, http.MethodGet, "/api/itinerary/"+sessionID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("itinerary: %d", rec.Code)
	}
	if itin["total_cost"] != float64(65) {
		t.Fatalf("total = %v", itin["total_cost"])
	}

	rec, _ = env.do(t, http.MethodPost, "/api/customer-info", `{"session_id":"`+sessionID+`","name":"Alex"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email: %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/customer-info", `{"session_id":"`+sessionID+`","email":"a@b.c","name":"Alex"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("customer info: %d", rec.Code)
	}
}
