package trip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wanderplan/concierge/models"
)

// Summarize renders the itinerary panel shown alongside every chat reply.
// It is a pure function of the session, so the same state always produces
// the same markdown.
func Summarize(sess *models.Session) string {
	if len(sess.Items) == 0 {
		return "Your itinerary is empty. Start by searching for flights, hotels, or activities!"
	}

	var b strings.Builder
	b.WriteString("**Your Travel Itinerary**\n\n")

	if sess.Preferences.Destination != "" {
		fmt.Fprintf(&b, "**Destination:** %s\n\n", sess.Preferences.Destination)
	}

	if flights := sess.ItemsOfKind(models.ItemKindFlight); len(flights) > 0 {
		b.WriteString("**Flights:**\n")
		for _, f := range flights {
			fmt.Fprintf(&b, "- %s: %s → %s ($%s)\n",
				payloadStr(f.Payload, "airline"),
				payloadStr(f.Payload, "from"),
				payloadStr(f.Payload, "to"),
				amount(f.Price))
		}
		b.WriteString("\n")
	}

	if hotels := sess.ItemsOfKind(models.ItemKindHotel); len(hotels) > 0 {
		b.WriteString("**Hotels:**\n")
		for _, h := range hotels {
			fmt.Fprintf(&b, "- %s - $%s/night\n",
				payloadStr(h.Payload, "name"),
				amount(payloadNum(h.Payload, "price_per_night")))
		}
		b.WriteString("\n")
	}

	if acts := sess.ItemsOfKind(models.ItemKindActivity); len(acts) > 0 {
		b.WriteString("**Activities:**\n")
		for _, a := range acts {
			fmt.Fprintf(&b, "- %s ($%s)\n",
				payloadStr(a.Payload, "name"),
				amount(a.Price))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "**Estimated Total:** $%.2f\n\n", sess.TotalCost())

	if sess.Confirmed {
		b.WriteString("✅ **Booking Confirmed!**")
	} else {
		b.WriteString("Type **'confirm booking'** to finalize your itinerary!")
	}
	return b.String()
}

func payloadStr(p map[string]interface{}, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// payloadNum tolerates both float64 (fresh payloads and anything that went
// through a JSON round trip) and int.
func payloadNum(p map[string]interface{}, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// amount prints a price the way the chat surfaces do: no trailing zeros,
// so 650 renders as "650" and 117.5 as "117.5".
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
