// README: OpenWeatherMap client; Redis-cached, guarded by a circuit breaker.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"caddy/internal/config"
	"caddy/internal/types"
)

var (
	ErrNotConfigured = errors.New("weather provider not configured")
	ErrUnavailable   = errors.New("weather provider unavailable")
	ErrInvalidInput  = errors.New("invalid input")
)

const (
	cacheKeyPrefix   = "weather:"
	failureThreshold = 5
	breakerTimeout   = 30 * time.Second
)

// Conditions are current weather at a coordinate. Units are metric:
// temperature in °C, wind speed in m/s, wind direction in degrees.
type Conditions struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Condition     string  `json:"condition"`
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   Cache
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[Conditions]
	logger  *zerolog.Logger
}

// NewClient builds a client. cache may be nil to disable caching.
func NewClient(cfg config.WeatherConfig, cache Cache, logger *zerolog.Logger) *Client {
	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		cache:   cache,
		ttl:     cfg.CacheTTL,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[Conditions](gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		// A caller giving up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// Current returns the conditions at p, from cache when fresh.
func (c *Client) Current(ctx context.Context, p types.Point) (Conditions, error) {
	if c.apiKey == "" {
		return Conditions{}, ErrNotConfigured
	}
	if !p.Valid() {
		return Conditions{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	key := cacheKey(p)
	if cond, ok := c.cached(ctx, key); ok {
		cacheHits.Inc()
		return cond, nil
	}
	cacheMisses.Inc()

	start := time.Now()
	cond, err := c.breaker.Execute(func() (Conditions, error) {
		return c.fetch(ctx, p)
	})
	fetchDuration.Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		fetches.WithLabelValues("rejected").Inc()
		return Conditions{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, context.Canceled):
		fetches.WithLabelValues("canceled").Inc()
		return Conditions{}, err
	case err != nil:
		fetches.WithLabelValues("error").Inc()
		return Conditions{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	fetches.WithLabelValues("ok").Inc()

	if c.cache != nil {
		if raw, err := json.Marshal(cond); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("weather cache write failed")
			}
		}
	}
	return cond, nil
}

func (c *Client) cached(ctx context.Context, key string) (Conditions, bool) {
	if c.cache == nil {
		return Conditions{}, false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("weather cache read failed")
		return Conditions{}, false
	}
	if !ok {
		return Conditions{}, false
	}
	var cond Conditions
	if err := json.Unmarshal(raw, &cond); err != nil {
		return Conditions{}, false
	}
	return cond, true
}

func (c *Client) fetch(ctx context.Context, p types.Point) (Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', 6, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Conditions{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Conditions{}, fmt.Errorf("provider returned %d", resp.StatusCode)
	}

	var r owmResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Conditions{}, fmt.Errorf("decode response: %w", err)
	}
	cond := Conditions{
		Temperature:   r.Main.Temp,
		Humidity:      r.Main.Humidity,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Deg,
	}
	if len(r.Weather) > 0 {
		cond.Condition = r.Weather[0].Description
	}
	return cond, nil
}

// cacheKey rounds to three decimals (about 100 m), so nearby lookups share an entry.
func cacheKey(p types.Point) string {
	return fmt.Sprintf("%s%.3f:%.3f", cacheKeyPrefix, p.Lat, p.Lng)
}
