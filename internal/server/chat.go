package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wanderplan/concierge/internal/notify"
	"github.com/wanderplan/concierge/internal/rag"
	"github.com/wanderplan/concierge/internal/trip"
	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/provider"
	web_search "github.com/wanderplan/concierge/tools/web_search"
)

const systemPrompt = `You are a helpful travel concierge AI assistant. You help users plan trips to ANY destination in the world by:
- Understanding their travel preferences (destination, dates, budget, travel style)
- Finding flights, hotels, and activities
- Providing travel tips and recommendations
- Building and managing their itinerary

You can help plan trips to ANY city or country worldwide. Use the context provided (from our database or web search) to give accurate, up-to-date information.

When presenting bookable options from our system, include the item ID in parentheses (e.g., FL001, HT001, AC001).
For destinations not in our booking system, provide helpful recommendations and information from web search results.

Be concise, friendly, and helpful. Use markdown formatting for better readability.

IMPORTANT:
- You can help with ANY destination worldwide - not just pre-loaded cities
- When showing flights, hotels, or activities from our system, format them clearly with IDs
- For other destinations, provide detailed recommendations based on web search and your knowledge
- Extract user preferences like destination, budget, and travel style from the conversation
- If the user wants to confirm their booking, acknowledge it and mention the admin team has been notified`

// ChatHandler serves the customer-facing endpoints. Provider, Engine and
// Searcher may each be nil; the handler degrades to the deterministic
// catalog path for whatever is missing.
type ChatHandler struct {
	Manager       *trip.Manager
	Provider      provider.Provider
	Engine        *rag.Engine
	Searcher      web_search.WebSearcher
	Notifier      *notify.Notifier
	WebMaxResults int
	Logger        *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
	g.POST("/book", h.book)
	g.POST("/customer-info", h.customerInfo)
	g.GET("/itinerary/:session_id", h.itinerary)
}

func (h *ChatHandler) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	ctx := c.Request().Context()

	sess, err := h.Manager.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	intent := trip.DetectIntent(req.Message)
	chatTurns.WithLabelValues(string(intent)).Inc()

	if sess, err = h.Manager.RecordMessage(ctx, sess.ID, models.RoleUser, req.Message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Preference extraction happens every turn; a model failure falls back
	// to the rule-based extractor rather than losing the turn.
	update := h.extract(ctx, req.Message, sess.Preferences)
	if sess, err = h.Manager.ApplyPreferences(ctx, sess.ID, update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The confirm transition runs before the reply is composed so the
	// reply reflects the session's actual state, not the attempt.
	if intent == trip.IntentConfirm {
		booking, confirmed, err := h.Manager.Confirm(ctx, sess.ID)
		switch {
		case errors.Is(err, models.ErrEmptyItinerary):
			// Nothing to confirm yet; the reply says so.
		case err != nil:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		default:
			sess = confirmed
			if booking != nil {
				bookingsConfirmed.Inc()
				h.Notifier.BookingConfirmed(ctx, booking, sess.History)
			}
		}
	}

	reply := h.reply(ctx, intent, sess, req.Message)

	if sess, err = h.Manager.RecordMessage(ctx, sess.ID, models.RoleAssistant, reply); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":        sess.ID,
		"response":          reply,
		"intent":            intent,
		"preferences":       sess.Preferences,
		"itinerary_summary": trip.Summarize(sess),
		"confirmed":         sess.Confirmed,
		"booking_id":        sess.BookingID,
	})
}

func (h *ChatHandler) extract(ctx context.Context, message string, current models.Preferences) models.Preferences {
	if h.Provider != nil {
		update, err := h.Provider.ExtractPreferences(ctx, message, current)
		if err == nil {
			return update
		}
		h.logf("preference extraction failed, using rules: %v", err)
	}
	return trip.ExtractPreferences(message)
}

func (h *ChatHandler) reply(ctx context.Context, intent trip.Intent, sess *models.Session, message string) string {
	if h.Provider == nil {
		return trip.FallbackReply(intent, sess)
	}

	contextBlock := h.buildContext(ctx, sess, message)
	history := sess.History
	if n := len(history); n > 0 {
		history = history[:n-1] // current turn travels as userMessage
	}
	reply, err := h.Provider.ChatCompletion(ctx, systemPrompt, contextBlock, history, message)
	if err != nil {
		h.logf("chat completion failed, using catalog reply: %v", err)
		return trip.FallbackReply(intent, sess)
	}
	return reply
}

func (h *ChatHandler) buildContext(ctx context.Context, sess *models.Session, message string) string {
	var parts []string

	if h.Engine != nil {
		if travel, found := h.Engine.GetContext(ctx, message); found {
			parts = append(parts, "TRAVEL DATA:\n"+travel)
		} else {
			retrievalMisses.Inc()
		}
	}

	if h.Searcher != nil && sess.Preferences.Destination != "" {
		if web := h.webContext(ctx, sess.Preferences.Destination); web != "" {
			parts = append(parts, web)
		}
	}

	prefs := sess.Preferences
	if prefs.Destination != "" || prefs.Budget > 0 {
		parts = append(parts, fmt.Sprintf("USER PREFERENCES:\n- Destination: %s\n- Origin: %s\n- Dates: %s to %s\n- Budget: $%v\n- Travel Style: %s",
			orUnspecified(prefs.Destination), orUnspecified(prefs.Origin),
			orUnspecified(prefs.StartDate), orUnspecified(prefs.EndDate),
			budgetOrUnspecified(prefs.Budget), orUnspecified(prefs.TravelStyle)))
	}

	if len(sess.Items) > 0 {
		parts = append(parts, fmt.Sprintf("CURRENT ITINERARY:\n- Flights: %d booked\n- Hotels: %d booked\n- Activities: %d booked\n- Total Cost: $%.2f",
			len(sess.ItemsOfKind(models.ItemKindFlight)),
			len(sess.ItemsOfKind(models.ItemKindHotel)),
			len(sess.ItemsOfKind(models.ItemKindActivity)),
			sess.TotalCost()))
	}

	return strings.Join(parts, "\n\n")
}

// webContext runs two destination queries and folds the results into one
// block. Search failures are logged and skipped.
func (h *ChatHandler) webContext(ctx context.Context, destination string) string {
	perQuery := h.WebMaxResults
	if perQuery <= 0 {
		perQuery = 3
	}
	queries := []string{
		destination + " travel guide tips",
		destination + " best hotels accommodation",
	}
	var all []web_search.Result
	for _, q := range queries {
		results, err := h.Searcher.Search(ctx, q, perQuery)
		if err != nil {
			h.logf("web search %q failed: %v", q, err)
			continue
		}
		all = append(all, results...)
	}
	if len(all) > 6 {
		all = all[:6]
	}
	return web_search.FormatResults(all)
}

func (h *ChatHandler) book(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
		ItemType  string `json:"item_type"`
		ItemID    string `json:"item_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	sess, err := h.Manager.AddItem(ctx, req.SessionID, models.ItemKind(req.ItemType), req.ItemID)
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	case errors.Is(err, models.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"message":           fmt.Sprintf("Added %s to your itinerary!", req.ItemType),
		"itinerary_summary": trip.Summarize(sess),
	})
}

func (h *ChatHandler) customerInfo(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		Phone     string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}

	_, err := h.Manager.SetCustomer(c.Request().Context(), req.SessionID, models.Customer{
		Email: req.Email, Name: req.Name, Phone: req.Phone,
	})
	if errors.Is(err, models.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Customer info saved"})
}

func (h *ChatHandler) itinerary(c echo.Context) error {
	sess, err := h.Manager.Get(c.Request().Context(), c.Param("session_id"))
	if errors.Is(err, models.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"flights":    itemPayloads(sess, models.ItemKindFlight),
		"hotels":     itemPayloads(sess, models.ItemKindHotel),
		"activities": itemPayloads(sess, models.ItemKindActivity),
		"total_cost": sess.TotalCost(),
		"confirmed":  sess.Confirmed,
		"summary":    trip.Summarize(sess),
	})
}

func itemPayloads(sess *models.Session, kind models.ItemKind) []map[string]interface{} {
	items := sess.ItemsOfKind(kind)
	out := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, it.Payload)
	}
	return out
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func budgetOrUnspecified(v float64) interface{} {
	if v <= 0 {
		return "Not specified"
	}
	return v
}
