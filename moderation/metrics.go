package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reprimandsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_reprimands_issued_total",
		Help: "Reprimands issued, by kind.",
	}, []string{"kind"})

	cascadesFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_cascades_fired_total",
		Help: "Reprimand triggers that escalated into a secondary action.",
	})

	expiriesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_expiries_processed_total",
		Help: "Reprimands expired by the scheduler.",
	})

	notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_notifications_sent_total",
		Help: "Notification messages delivered to log destinations.",
	})

	notificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_notification_failures_total",
		Help: "Notification deliveries that failed.",
	})
)
