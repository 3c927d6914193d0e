package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeConfident   = "confident"
	outcomeFallback    = "fallback"
	outcomeInvalid     = "invalid_records"
	outcomeNoRecords   = "no_records"
	outcomeUnavailable = "unavailable"
)

var recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "caddy_recommendations_total",
	Help: "Shot recommendations by route and outcome",
}, []string{"route", "outcome"})
