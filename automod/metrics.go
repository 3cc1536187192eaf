package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_rules_fired_total",
	Help: "Number of auto-moderation rules that fired, by rule kind.",
}, []string{"kind"})

var censorsMatched = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_censors_matched_total",
	Help: "Number of censor matches on message content.",
})
