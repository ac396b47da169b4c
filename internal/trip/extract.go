package trip

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wanderplan/concierge/models"
)

// destinationPatterns pull a place name out of phrasings like "trip to
// Paris", "I want to visit rome" or "Tokyo vacation". Group 1 is the
// candidate destination.
var destinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:trip|travel|go|visit|going|plan|planning|fly|flying)\s+(?:to|for)\s+([a-z\s]+?)(?:\s+(?:for|in|on|with|next|this)|[,.?!]|$)`),
	regexp.MustCompile(`(?:want to|like to|planning to)\s+(?:visit|go to|see|explore)\s+([a-z\s]+?)(?:\s+(?:for|in|on|with)|[,.?!]|$)`),
	regexp.MustCompile(`^([a-z\s]+?)\s+(?:trip|travel|vacation|holiday)`),
}

var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*([0-9][0-9,]*)`),
	regexp.MustCompile(`([0-9][0-9,]*)\s+(?:dollars|usd)`),
	regexp.MustCompile(`budget\s+(?:of\s+|is\s+)?([0-9][0-9,]*)`),
}

var datePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// styleKeywords is ordered; the first bucket with a match wins, so the
// same message always yields the same style.
var styleKeywords = []struct {
	style string
	words []string
}{
	{models.StyleBudget, []string{"budget", "cheap", "affordable", "backpack"}},
	{models.StyleModerate, []string{"moderate", "mid-range", "comfortable"}},
	{models.StyleLuxury, []string{"luxury", "luxurious", "five star", "5-star", "high-end", "upscale"}},
}

var interestKeywords = []string{
	"food", "museum", "museums", "history", "art", "nightlife",
	"shopping", "nature", "adventure", "culture", "relaxation", "beach",
}

// knownDestinations is the gazetteer: catalog cities plus the departure
// cities the flight data references.
var knownDestinations = []string{"Paris", "London", "Tokyo", "Rome", "New York", "Los Angeles"}

var destinationSkipWords = map[string]bool{
	"a": true, "the": true, "my": true, "our": true,
	"this": true, "that": true, "some": true, "any": true,
}

// ExtractPreferences derives a partial preference update from a single user
// message using regexes and keyword lists only. It is the deterministic
// stand-in for the LLM extraction call and follows the same contract: return
// only the fields the message actually mentions.
func ExtractPreferences(message string) models.Preferences {
	lower := strings.ToLower(message)
	var out models.Preferences

	out.Destination = extractDestination(lower)

	for _, re := range budgetPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			raw := strings.ReplaceAll(m[1], ",", "")
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
				out.Budget = v
				break
			}
		}
	}

	if dates := datePattern.FindAllString(lower, 2); len(dates) > 0 {
		out.StartDate = dates[0]
		if len(dates) > 1 {
			out.EndDate = dates[1]
		}
	}

	for _, bucket := range styleKeywords {
		for _, w := range bucket.words {
			if strings.Contains(lower, w) {
				out.TravelStyle = bucket.style
				break
			}
		}
		if out.TravelStyle != "" {
			break
		}
	}

	for _, w := range interestKeywords {
		if strings.Contains(lower, w) {
			out.Interests = append(out.Interests, strings.TrimSuffix(w, "s"))
		}
	}
	out.Interests = dedup(out.Interests)

	return out
}

func extractDestination(lower string) string {
	// Exact gazetteer mention wins over pattern matching.
	for _, city := range knownDestinations {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	for _, re := range destinationPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			dest := strings.TrimSpace(m[1])
			if len(dest) > 2 && !destinationSkipWords[dest] {
				// Caser carries state, so build one per call.
				return cases.Title(language.English).String(dest)
			}
		}
	}
	return ""
}

func dedup(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
