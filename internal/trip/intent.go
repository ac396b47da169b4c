// Package trip holds the conversation core: intent classification,
// rule-based preference extraction, the session/itinerary state machine and
// the deterministic reply formatting used when no language model is wired.
package trip

import "strings"

// Intent labels what a chat turn is asking for. Classification is keyword
// based and deterministic; the first matching bucket wins.
type Intent string

const (
	IntentConfirm        Intent = "confirm"
	IntentFlightSearch   Intent = "flight_search"
	IntentHotelSearch    Intent = "hotel_search"
	IntentActivitySearch Intent = "activity_search"
	IntentGuide          Intent = "guide"
	IntentGeneral        Intent = "general"
)

var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentConfirm, []string{"confirm", "book it", "yes book", "proceed", "finalize"}},
	{IntentFlightSearch, []string{"flight", "fly", "airplane", "plane"}},
	{IntentHotelSearch, []string{"hotel", "stay", "accommodation", "room"}},
	{IntentActivitySearch, []string{"activity", "activities", "things to do", "tour", "attraction"}},
	{IntentGuide, []string{"guide", "tips", "advice", "recommend", "must see", "best time"}},
}

// DetectIntent classifies a message. Buckets are checked in priority order,
// so "confirm my flight" is a confirmation, not a flight search.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, bucket := range intentKeywords {
		for _, w := range bucket.words {
			if strings.Contains(lower, w) {
				return bucket.intent
			}
		}
	}
	return IntentGeneral
}
