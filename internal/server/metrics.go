package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_chat_turns_total",
		Help: "Chat turns processed, labelled by detected intent.",
	}, []string{"intent"})

	bookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_bookings_confirmed_total",
		Help: "Bookings minted by session confirmation.",
	})

	retrievalMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_retrieval_misses_total",
		Help: "Chat turns where catalog retrieval found nothing above the similarity threshold.",
	})
)
