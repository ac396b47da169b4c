package catalog

import (
	"strings"
	"testing"

	"github.com/wanderplan/concierge/models"
)

func TestLookupFlight(t *testing.T) {
	item, err := Lookup(models.ItemKindFlight, "FL001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.UnitPrice != 650 {
		t.Fatalf("expected unit price 650, got %v", item.UnitPrice)
	}
	if item.Payload["airline"] != "SkyWay Airlines" {
		t.Fatalf("payload snapshot missing airline: %+v", item.Payload)
	}
}

func TestLookupUnknownItem(t *testing.T) {
	if _, err := Lookup(models.ItemKindHotel, "HT999"); err != models.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	// guides are not bookable
	if _, err := Lookup(models.ItemKindGuide, "paris"); err != models.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for guide, got %v", err)
	}
}

func TestSearchFlightsFilters(t *testing.T) {
	got := SearchFlights("new york", "paris", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 JFK->CDG flights, got %d", len(got))
	}
	got = SearchFlights("", "", "2025-03-20")
	if len(got) != 1 || got[0].ID != "FL004" {
		t.Fatalf("expected FL004 for date filter, got %+v", got)
	}
}

func TestSearchHotelsMaxPrice(t *testing.T) {
	got := SearchHotels("Paris", 200)
	if len(got) != 1 || got[0].ID != "HT001" {
		t.Fatalf("expected budget Paris hotel only, got %+v", got)
	}
	if len(SearchHotels("", 0)) != len(Hotels) {
		t.Fatalf("no-filter search should return every hotel")
	}
}

func TestGuideFor(t *testing.T) {
	g, ok := GuideFor("tokyo")
	if !ok || g.City != "Tokyo" {
		t.Fatalf("expected Tokyo guide, got %+v ok=%v", g, ok)
	}
	if _, ok := GuideFor("Atlantis"); ok {
		t.Fatalf("unexpected guide for unknown city")
	}
}

func TestRenderDeterministic(t *testing.T) {
	first := Flights[0].Render()
	second := Flights[0].Render()
	if first != second {
		t.Fatalf("render not stable: %q vs %q", first, second)
	}
	if !strings.Contains(first, "New York (JFK)") || !strings.Contains(first, "$650") {
		t.Fatalf("unexpected flight rendering: %q", first)
	}
	hotel := Hotels[0].Render()
	if !strings.Contains(hotel, "Hotel Le Marais") || !strings.Contains(hotel, "$180 per night") {
		t.Fatalf("unexpected hotel rendering: %q", hotel)
	}
}

func TestCitiesGazetteer(t *testing.T) {
	cities := Cities()
	if len(cities) != 4 {
		t.Fatalf("expected 4 guide cities, got %v", cities)
	}
}
