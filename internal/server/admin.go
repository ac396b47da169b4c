package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wanderplan/concierge/internal/rag"
	"github.com/wanderplan/concierge/internal/store"
	"github.com/wanderplan/concierge/internal/trip"
	"github.com/wanderplan/concierge/models"
)

// AdminHandler serves the back-office surfaces: notifications, bookings,
// session inspection and retrieval-backed conversation search.
type AdminHandler struct {
	Backend store.Backend
	Manager *trip.Manager
	Engine  *rag.Engine
}

func (h *AdminHandler) Register(g *echo.Group) {
	g.GET("/notifications", h.notifications)
	g.GET("/bookings", h.bookings)
	g.GET("/booking/:booking_id", h.booking)
	g.PATCH("/booking/:booking_id", h.updateBookingStatus)
	g.GET("/sessions", h.sessions)
	g.GET("/session/:session_id", h.session)
	g.POST("/query", h.query)
}

func (h *AdminHandler) notifications(c echo.Context) error {
	ctx := c.Request().Context()
	notifs, err := h.Backend.ListNotifications(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]map[string]interface{}, 0, len(notifs))
	for _, n := range notifs {
		entry := map[string]interface{}{
			"id":         n.ID,
			"booking_id": n.BookingID,
			"timestamp":  n.CreatedAt,
			"read":       n.Read,
			"data":       n.Data,
		}
		// Notifications are only useful with their booking attached.
		booking, err := h.Backend.GetBooking(ctx, n.BookingID)
		if err != nil {
			continue
		}
		entry["preferences"] = booking.Preferences
		entry["itinerary"] = booking.Items
		entry["chat_summary"] = booking.ChatSummary
		result = append(result, entry)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": result})
}

func (h *AdminHandler) bookings(c echo.Context) error {
	bookings, err := h.Backend.ListBookings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]map[string]interface{}, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, bookingView(b))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"bookings": result, "total": len(result)})
}

func (h *AdminHandler) booking(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Backend.GetBooking(ctx, c.Param("booking_id"))
	if errors.Is(err, models.ErrBookingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	view := bookingView(b)
	// The session may have been evicted; fall back to the archived
	// transcript, then serve the booking without history.
	if sess, err := h.Manager.Get(ctx, b.SessionID); err == nil {
		view["chat_history"] = sess.History
	} else if msgs, err := h.Backend.ListArchivedMessages(ctx, b.SessionID); err == nil && len(msgs) > 0 {
		view["chat_history"] = msgs
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) updateBookingStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("booking_id")
	err := h.Backend.UpdateBookingStatus(c.Request().Context(), id, models.BookingStatus(req.Status))
	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "booking_id": id, "status": req.Status})
}

func (h *AdminHandler) sessions(c echo.Context) error {
	sessions, err := h.Manager.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]map[string]interface{}, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, map[string]interface{}{
			"id":            s.ID,
			"created_at":    s.CreatedAt,
			"destination":   s.Preferences.Destination,
			"confirmed":     s.Confirmed,
			"message_count": len(s.History),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sessions": result})
}

func (h *AdminHandler) session(c echo.Context) error {
	sess, err := h.Manager.Get(c.Request().Context(), c.Param("session_id"))
	if errors.Is(err, models.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":           sess.ID,
		"created_at":   sess.CreatedAt,
		"preferences":  sess.Preferences,
		"itinerary":    sess.Items,
		"total_cost":   sess.TotalCost(),
		"chat_history": sess.History,
		"confirmed":    sess.Confirmed,
	})
}

func (h *AdminHandler) query(c echo.Context) error {
	var req struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	ctx := c.Request().Context()

	var conversationResults []rag.ConversationHit
	var travelContext string
	if h.Engine != nil {
		conversationResults = h.Engine.SearchConversations(ctx, req.Query, req.SessionID, 5)
		travelContext, _ = h.Engine.GetContext(ctx, req.Query)
	}
	if conversationResults == nil {
		conversationResults = []rag.ConversationHit{}
	}

	var sessionInfo map[string]interface{}
	if req.SessionID != "" {
		if sess, err := h.Manager.Get(ctx, req.SessionID); err == nil {
			sessionInfo = map[string]interface{}{
				"destination":  sess.Preferences.Destination,
				"budget":       sess.Preferences.Budget,
				"travel_style": sess.Preferences.TravelStyle,
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":                req.Query,
		"session_id":           req.SessionID,
		"session_info":         sessionInfo,
		"conversation_results": conversationResults,
		"travel_context":       travelContext,
	})
}

func bookingView(b *models.Booking) map[string]interface{} {
	return map[string]interface{}{
		"booking_id": b.ID,
		"session_id": b.SessionID,
		"timestamp":  b.CreatedAt,
		"status":     b.Status,
		"customer_info": map[string]string{
			"email": b.Customer.Email,
			"name":  b.Customer.Name,
			"phone": b.Customer.Phone,
		},
		"preferences":  b.Preferences,
		"itinerary":    b.Items,
		"destination":  b.Destination,
		"total_cost":   b.TotalCost,
		"chat_summary": b.ChatSummary,
	}
}
