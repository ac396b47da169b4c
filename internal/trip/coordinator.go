package trip

import (
	"fmt"
	"strings"

	"github.com/wanderplan/concierge/catalog"
	"github.com/wanderplan/concierge/models"
)

// Style-derived price caps for hotel search. Luxury has no cap.
const (
	budgetHotelCap   = 150
	moderateHotelCap = 250
)

// FallbackReply formats a deterministic answer for an intent straight from
// the catalog. It is the reply path when no language model is configured,
// and the formatting the model-backed path also leans on for bookable
// options. Callers run the confirm transition first; the confirm reply
// reports the session's actual state.
func FallbackReply(intent Intent, sess *models.Session) string {
	prefs := sess.Preferences
	switch intent {
	case IntentConfirm:
		if !sess.Confirmed {
			return "Your itinerary is empty. Add a flight, hotel, or activity before confirming!"
		}
		return "Your booking has been confirmed! Our admin team has been notified and will be in touch shortly."
	case IntentFlightSearch:
		flights := catalog.SearchFlights(prefs.Origin, prefs.Destination, prefs.StartDate)
		if len(flights) > 5 {
			flights = flights[:5]
		}
		return formatFlights(flights)
	case IntentHotelSearch:
		var maxPrice float64
		switch prefs.TravelStyle {
		case models.StyleBudget:
			maxPrice = budgetHotelCap
		case models.StyleModerate:
			maxPrice = moderateHotelCap
		}
		hotels := catalog.SearchHotels(prefs.Destination, maxPrice)
		if len(hotels) > 5 {
			hotels = hotels[:5]
		}
		return formatHotels(hotels)
	case IntentActivitySearch:
		return formatActivities(catalog.SearchActivities(prefs.Destination))
	case IntentGuide:
		if prefs.Destination == "" {
			return "Which destination would you like travel tips for?"
		}
		guide, ok := catalog.GuideFor(prefs.Destination)
		if !ok {
			return "Sorry, I don't have a guide for that destination yet."
		}
		return formatGuide(guide)
	}
	return generalReply(prefs)
}

func formatFlights(flights []catalog.Flight) string {
	if len(flights) == 0 {
		return "No flights found matching your criteria."
	}
	var b strings.Builder
	b.WriteString("**Available Flights:**\n\n")
	for _, f := range flights {
		fmt.Fprintf(&b, "- **%s** (%s)\n", f.Airline, f.ID)
		fmt.Fprintf(&b, "  %s → %s\n", f.From, f.To)
		fmt.Fprintf(&b, "  Departure: %s | Arrival: %s\n", f.Departure, f.Arrival)
		fmt.Fprintf(&b, "  Price: $%s (%s)\n\n", amount(f.Price), f.Class)
	}
	return b.String()
}

func formatHotels(hotels []catalog.Hotel) string {
	if len(hotels) == 0 {
		return "No hotels found matching your criteria."
	}
	var b strings.Builder
	b.WriteString("**Available Hotels:**\n\n")
	for _, h := range hotels {
		fmt.Fprintf(&b, "- **%s** (%s) - %s\n", h.Name, h.ID, h.City)
		fmt.Fprintf(&b, "  Rating: %s (%.1f)\n", strings.Repeat("⭐", int(h.Rating)), h.Rating)
		fmt.Fprintf(&b, "  Price: $%s/night\n", amount(h.PricePerNight))
		fmt.Fprintf(&b, "  Amenities: %s\n", strings.Join(h.Amenities, ", "))
		fmt.Fprintf(&b, "  %s\n\n", h.Description)
	}
	return b.String()
}

func formatActivities(activities []catalog.Activity) string {
	if len(activities) == 0 {
		return "No activities found for this destination."
	}
	var b strings.Builder
	b.WriteString("**Available Activities:**\n\n")
	for _, a := range activities {
		fmt.Fprintf(&b, "- **%s** (%s)\n", a.Name, a.ID)
		fmt.Fprintf(&b, "  Location: %s | Duration: %s\n", a.City, a.Duration)
		fmt.Fprintf(&b, "  Price: $%s\n", amount(a.Price))
		fmt.Fprintf(&b, "  %s\n\n", a.Description)
	}
	return b.String()
}

func formatGuide(g catalog.Guide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Travel Guide: %s**\n\n", g.City)
	fmt.Fprintf(&b, "**Best Time to Visit:** %s\n", g.BestTime)
	fmt.Fprintf(&b, "**Currency:** %s\n", g.Currency)
	fmt.Fprintf(&b, "**Language:** %s\n\n", g.Language)
	b.WriteString("**Must-See Attractions:**\n")
	for _, place := range g.MustSee {
		fmt.Fprintf(&b, "- %s\n", place)
	}
	b.WriteString("\n**Travel Tips:**\n")
	for _, tip := range g.Tips {
		fmt.Fprintf(&b, "- %s\n", tip)
	}
	return b.String()
}

func generalReply(prefs models.Preferences) string {
	if prefs.Destination == "" {
		return "Welcome to Travel Concierge! I'd love to help you plan your perfect trip.\n\n" +
			"To get started, tell me:\n" +
			"- Where would you like to go?\n" +
			"- When are you planning to travel?\n" +
			"- What's your approximate budget?\n" +
			"- What kind of experience are you looking for? (adventure, relaxation, culture, etc.)\n\n" +
			"Available destinations I have info for: Paris, London, Tokyo, Rome"
	}
	return fmt.Sprintf("Great choice! I can help you plan your trip to **%s**.\n\n", prefs.Destination) +
		"What would you like to explore?\n" +
		"- Search for **flights**\n" +
		"- Find **hotels**\n" +
		"- Discover **activities** and tours\n" +
		"- Get **travel tips** and guides\n\n" +
		"Just let me know what interests you!"
}
