package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caddy_weather_cache_hits_total",
		Help: "Weather lookups served from cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caddy_weather_cache_misses_total",
		Help: "Weather lookups that went to the provider",
	})

	// result: ok, error, rejected (breaker open)
	fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caddy_weather_fetches_total",
		Help: "Provider fetch attempts by result",
	}, []string{"result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "caddy_weather_fetch_duration_seconds",
		Help:    "Provider fetch latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)
