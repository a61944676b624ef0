package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deposits_created_total",
		Help: "Deposit redirects issued to the gateway.",
	})

	WebhookNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_total",
		Help: "Inbound gateway notifications by terminal verdict.",
	}, []string{"verdict"})

	BalanceFallbackWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_fallback_writes_total",
		Help: "Balance updates that fell back to read-modify-write.",
	})
)
