package trip

import "testing"

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		message string
		want    Intent
	}{
		{"I want to confirm my booking", IntentConfirm},
		{"yes book it please", IntentConfirm},
		{"please proceed", IntentConfirm},
		{"confirm my flight", IntentConfirm}, // confirm outranks flight
		{"show me flights to Paris", IntentFlightSearch},
		{"I need to fly out on Monday", IntentFlightSearch},
		{"where should I stay?", IntentHotelSearch},
		{"find me a hotel", IntentHotelSearch},
		{"what are the best things to do?", IntentActivitySearch},
		{"book a tour of the Louvre", IntentActivitySearch},
		{"any travel tips?", IntentGuide},
		{"what do you recommend?", IntentGuide},
		{"hello there", IntentGeneral},
		{"", IntentGeneral},
	}
	for _, tc := range cases {
		if got := DetectIntent(tc.message); got != tc.want {
			t.Errorf("DetectIntent(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}
