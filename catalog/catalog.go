// Package catalog holds the static set of bookable flights, hotels and
// activities plus destination guides. The records never change at runtime;
// they are the source of truth for itinerary snapshots and for the documents
// the retrieval engine indexes.
package catalog

import (
	"fmt"
	"strings"

	"github.com/wanderplan/concierge/models"
)

type Flight struct {
	ID        string  `json:"id"`
	Airline   string  `json:"airline"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Departure string  `json:"departure"`
	Arrival   string  `json:"arrival"`
	Price     float64 `json:"price"`
	Class     string  `json:"class"`
}

type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Rating        float64  `json:"rating"`
	PricePerNight float64  `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
	Description   string   `json:"description"`
}

type Activity struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type Guide struct {
	City     string   `json:"city"`
	BestTime string   `json:"best_time"`
	Currency string   `json:"currency"`
	Language string   `json:"language"`
	Tips     []string `json:"tips"`
	MustSee  []string `json:"must_see"`
}

var Flights = []Flight{
	{ID: "FL001", Airline: "SkyWay Airlines", From: "New York (JFK)", To: "Paris (CDG)", Departure: "2025-03-15 08:00", Arrival: "2025-03-15 20:30", Price: 650, Class: "economy"},
	{ID: "FL002", Airline: "SkyWay Airlines", From: "New York (JFK)", To: "Paris (CDG)", Departure: "2025-03-15 14:00", Arrival: "2025-03-16 02:30", Price: 580, Class: "economy"},
	{ID: "FL003", Airline: "Atlantic Air", From: "New York (JFK)", To: "London (LHR)", Departure: "2025-03-15 10:00", Arrival: "2025-03-15 22:00", Price: 520, Class: "economy"},
	{ID: "FL004", Airline: "Pacific Wings", From: "Los Angeles (LAX)", To: "Tokyo (NRT)", Departure: "2025-03-20 11:00", Arrival: "2025-03-21 15:00", Price: 890, Class: "economy"},
	{ID: "FL005", Airline: "Euro Express", From: "Paris (CDG)", To: "Rome (FCO)", Departure: "2025-03-18 09:00", Arrival: "2025-03-18 11:15", Price: 180, Class: "economy"},
}

var Hotels = []Hotel{
	{ID: "HT001", Name: "Hotel Le Marais", City: "Paris", Rating: 4.5, PricePerNight: 180, Amenities: []string{"WiFi", "Breakfast", "Gym"}, Description: "Charming boutique hotel in the heart of Le Marais district."},
	{ID: "HT002", Name: "Grand Plaza Paris", City: "Paris", Rating: 4.8, PricePerNight: 320, Amenities: []string{"WiFi", "Breakfast", "Gym", "Spa", "Pool"}, Description: "Luxury hotel near the Champs-Élysées."},
	{ID: "HT003", Name: "London Bridge Inn", City: "London", Rating: 4.2, PricePerNight: 150, Amenities: []string{"WiFi", "Breakfast"}, Description: "Cozy hotel with views of the Thames."},
	{ID: "HT004", Name: "Sakura Garden Hotel", City: "Tokyo", Rating: 4.6, PricePerNight: 200, Amenities: []string{"WiFi", "Breakfast", "Onsen", "Garden"}, Description: "Traditional Japanese hospitality meets modern comfort."},
	{ID: "HT005", Name: "Roma Centro B&B", City: "Rome", Rating: 4.3, PricePerNight: 120, Amenities: []string{"WiFi", "Breakfast"}, Description: "Family-run B&B steps from the Colosseum."},
}

var Activities = []Activity{
	{ID: "AC001", Name: "Eiffel Tower Skip-the-Line Tour", City: "Paris", Duration: "3 hours", Price: 65, Description: "Skip the crowds with priority access to the Eiffel Tower."},
	{ID: "AC002", Name: "Louvre Museum Guided Tour", City: "Paris", Duration: "4 hours", Price: 85, Description: "Expert-led tour of the world's most famous museum."},
	{ID: "AC003", Name: "London Eye & Thames Cruise", City: "London", Duration: "2.5 hours", Price: 55, Description: "Panoramic views from the London Eye plus a river cruise."},
	{ID: "AC004", Name: "Tokyo Food Walking Tour", City: "Tokyo", Duration: "3 hours", Price: 95, Description: "Taste your way through Tokyo's best street food."},
	{ID: "AC005", Name: "Colosseum Underground Tour", City: "Rome", Duration: "3.5 hours", Price: 75, Description: "Explore the hidden underground chambers of the Colosseum."},
}

var Guides = []Guide{
	{
		City: "Paris", BestTime: "April to June, September to November", Currency: "Euro (EUR)", Language: "French",
		Tips:    []string{"Book museum tickets in advance to skip lines", "Metro is the fastest way to get around", "Most shops close on Sundays", "Tipping is not required but appreciated"},
		MustSee: []string{"Eiffel Tower", "Louvre", "Notre-Dame", "Montmartre", "Champs-Élysées"},
	},
	{
		City: "London", BestTime: "May to September", Currency: "British Pound (GBP)", Language: "English",
		Tips:    []string{"Get an Oyster card for public transport", "Many museums are free", "Weather is unpredictable - bring layers", "Stand on the right on escalators"},
		MustSee: []string{"Big Ben", "Tower of London", "British Museum", "Buckingham Palace", "Hyde Park"},
	},
	{
		City: "Tokyo", BestTime: "March to May, September to November", Currency: "Japanese Yen (JPY)", Language: "Japanese",
		Tips:    []string{"Get a Suica/Pasmo card for trains", "Cash is still widely used", "Be quiet on public transport", "Remove shoes when entering homes/some restaurants"},
		MustSee: []string{"Shibuya Crossing", "Senso-ji Temple", "Meiji Shrine", "Tokyo Skytree", "Tsukiji Market"},
	},
	{
		City: "Rome", BestTime: "April to June, September to October", Currency: "Euro (EUR)", Language: "Italian",
		Tips:    []string{"Book Vatican and Colosseum tickets well in advance", "Siesta time (1-4pm) means many shops close", "Drink from the public fountains - water is fresh", "Dress modestly for churches"},
		MustSee: []string{"Colosseum", "Vatican City", "Trevi Fountain", "Pantheon", "Roman Forum"},
	},
}

// Cities lists the destinations the catalog knows about, used as the
// gazetteer for rule-based destination extraction.
func Cities() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range Guides {
		if _, ok := seen[g.City]; !ok {
			seen[g.City] = struct{}{}
			out = append(out, g.City)
		}
	}
	return out
}

// SearchFlights filters by case-insensitive substring on origin, destination
// and departure date. Empty filters match everything.
func SearchFlights(origin, destination, date string) []Flight {
	var out []Flight
	for _, f := range Flights {
		if origin != "" && !strings.Contains(strings.ToLower(f.From), strings.ToLower(origin)) {
			continue
		}
		if destination != "" && !strings.Contains(strings.ToLower(f.To), strings.ToLower(destination)) {
			continue
		}
		if date != "" && !strings.Contains(f.Departure, date) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SearchHotels filters by city substring and optional nightly price cap
// (maxPrice <= 0 means no cap).
func SearchHotels(city string, maxPrice float64) []Hotel {
	var out []Hotel
	for _, h := range Hotels {
		if city != "" && !strings.Contains(strings.ToLower(h.City), strings.ToLower(city)) {
			continue
		}
		if maxPrice > 0 && h.PricePerNight > maxPrice {
			continue
		}
		out = append(out, h)
	}
	return out
}

// SearchActivities filters by city substring.
func SearchActivities(city string) []Activity {
	var out []Activity
	for _, a := range Activities {
		if city != "" && !strings.Contains(strings.ToLower(a.City), strings.ToLower(city)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// GuideFor returns the guide whose city matches by substring.
func GuideFor(city string) (Guide, bool) {
	for _, g := range Guides {
		if strings.Contains(strings.ToLower(g.City), strings.ToLower(city)) {
			return g, true
		}
	}
	return Guide{}, false
}

// Item is the resolved form of a bookable catalog record: its snapshot
// payload and the unit price the pricing rules start from.
type Item struct {
	Kind      models.ItemKind
	ID        string
	Payload   map[string]interface{}
	UnitPrice float64
}

// Lookup resolves a bookable catalog item by kind and id. Guides are not
// bookable and resolve to models.ErrItemNotFound.
func Lookup(kind models.ItemKind, id string) (Item, error) {
	switch kind {
	case models.ItemKindFlight:
		for _, f := range Flights {
			if f.ID == id {
				return Item{Kind: kind, ID: id, Payload: f.Payload(), UnitPrice: f.Price}, nil
			}
		}
	case models.ItemKindHotel:
		for _, h := range Hotels {
			if h.ID == id {
				return Item{Kind: kind, ID: id, Payload: h.Payload(), UnitPrice: h.PricePerNight}, nil
			}
		}
	case models.ItemKindActivity:
		for _, a := range Activities {
			if a.ID == id {
				return Item{Kind: kind, ID: id, Payload: a.Payload(), UnitPrice: a.Price}, nil
			}
		}
	}
	return Item{}, models.ErrItemNotFound
}

func (f Flight) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id": f.ID, "airline": f.Airline, "from": f.From, "to": f.To,
		"departure": f.Departure, "arrival": f.Arrival, "price": f.Price, "class": f.Class,
	}
}

func (h Hotel) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id": h.ID, "name": h.Name, "city": h.City, "rating": h.Rating,
		"price_per_night": h.PricePerNight, "amenities": h.Amenities, "description": h.Description,
	}
}

func (a Activity) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id": a.ID, "name": a.Name, "city": a.City, "duration": a.Duration,
		"price": a.Price, "description": a.Description,
	}
}

// Render produces the deterministic natural-language form of a flight used as
// embedding input. Field order is fixed so re-renders are byte-identical.
func (f Flight) Render() string {
	return fmt.Sprintf("Flight from %s to %s on %s. Departure: %s, Arrival: %s. Price: $%.0f %s class.",
		f.From, f.To, f.Airline, f.Departure, f.Arrival, f.Price, f.Class)
}

func (h Hotel) Render() string {
	return fmt.Sprintf("%s hotel in %s. Rating: %.1f stars. $%.0f per night. Amenities: %s. %s",
		h.Name, h.City, h.Rating, h.PricePerNight, strings.Join(h.Amenities, ", "), h.Description)
}

func (a Activity) Render() string {
	return fmt.Sprintf("%s in %s. Duration: %s, Price: $%.0f. %s",
		a.Name, a.City, a.Duration, a.Price, a.Description)
}

func (g Guide) Render() string {
	return fmt.Sprintf("Travel guide for %s. Best time to visit: %s. Currency: %s. Language: %s. Must see: %s. Tips: %s",
		g.City, g.BestTime, g.Currency, g.Language, strings.Join(g.MustSee, ", "), strings.Join(g.Tips, " "))
}
