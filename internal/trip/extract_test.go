package trip

import (
	"testing"

	"github.com/wanderplan/concierge/models"
)

func TestExtractDestination(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"I want to plan a trip to Paris", "Paris"},
		{"we're going to tokyo next month", "Tokyo"},
		{"planning to visit Rome with my family", "Rome"},
		{"barcelona trip for two weeks", "Barcelona"},
		{"I'd like to travel to lisbon, any tips?", "Lisbon"},
		{"what's the weather like?", ""},
	}
	for _, tc := range cases {
		got := ExtractPreferences(tc.message)
		if got.Destination != tc.want {
			t.Errorf("ExtractPreferences(%q).Destination = %q, want %q", tc.message, got.Destination, tc.want)
		}
	}
}

func TestExtractBudget(t *testing.T) {
	cases := []struct {
		message string
		want    float64
	}{
		{"my budget is $2,500", 2500},
		{"I have 3000 dollars to spend", 3000},
		{"budget of 1500", 1500},
		{"no money talk here", 0},
	}
	for _, tc := range cases {
		got := ExtractPreferences(tc.message)
		if got.Budget != tc.want {
			t.Errorf("ExtractPreferences(%q).Budget = %v, want %v", tc.message, got.Budget, tc.want)
		}
	}
}

func TestExtractStyleAndDates(t *testing.T) {
	got := ExtractPreferences("luxury trip to Paris from 2025-03-15 to 2025-03-22")
	if got.TravelStyle != models.StyleLuxury {
		t.Fatalf("style = %q, want luxury", got.TravelStyle)
	}
	if got.StartDate != "2025-03-15" || got.EndDate != "2025-03-22" {
		t.Fatalf("dates = %q..%q", got.StartDate, got.EndDate)
	}
	if got.Destination != "Paris" {
		t.Fatalf("destination = %q", got.Destination)
	}
}

func TestExtractStyleDeterministicOnMixedKeywords(t *testing.T) {
	// Both the budget and luxury buckets match; the first bucket wins,
	// every time.
	for i := 0; i < 50; i++ {
		got := ExtractPreferences("a cheap yet luxurious getaway")
		if got.TravelStyle != models.StyleBudget {
			t.Fatalf("style = %q on call %d, want budget", got.TravelStyle, i)
		}
	}
}

func TestExtractInterests(t *testing.T) {
	got := ExtractPreferences("we love food and museums, mostly food really")
	want := map[string]bool{"food": true, "museum": true}
	if len(got.Interests) != len(want) {
		t.Fatalf("interests = %v", got.Interests)
	}
	for _, in := range got.Interests {
		if !want[in] {
			t.Fatalf("unexpected interest %q in %v", in, got.Interests)
		}
	}
}

func TestExtractMentionsOnly(t *testing.T) {
	got := ExtractPreferences("just saying hi")
	if got.Destination != "" || got.Budget != 0 || got.TravelStyle != "" || got.StartDate != "" || len(got.Interests) != 0 {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
}
