// README: Recommendation service; binds a distance policy and a club selector per route.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"caddy/internal/modules/profile"
	"caddy/internal/shot"
	"caddy/internal/types"
	"caddy/internal/validation"
	"caddy/internal/weather"
)

type clubSource interface {
	ClubsFor(ctx context.Context, golferID int64) ([]profile.Club, error)
}

// WeatherSource supplies current conditions at a coordinate.
type WeatherSource interface {
	Current(ctx context.Context, p types.Point) (weather.Conditions, error)
}

// ElevationSource supplies the height change between two coordinates.
type ElevationSource interface {
	ElevationChange(ctx context.Context, from, to types.Point) (float64, error)
}

// route binds one adjustment policy to one selector.
type route struct {
	name     string
	policy   shot.Policy
	selector string
}

var (
	simpleRoute     = route{RouteSimple, shot.SimplePolicy, shot.SelectorNearestCarry}
	conditionsRoute = route{RouteConditions, shot.DirectionalPolicy, shot.SelectorNearestTotal}
)

type Service struct {
	clubs     clubSource
	weather   WeatherSource
	elevation ElevationSource
	logger    *zerolog.Logger
}

// NewService wires the service. weather and elevation may be nil when those
// providers are not configured.
func NewService(clubs clubSource, wx WeatherSource, elevation ElevationSource, logger *zerolog.Logger) *Service {
	return &Service{clubs: clubs, weather: wx, elevation: elevation, logger: logger}
}

// Simple adjusts with the simple policy and picks the nearest carry.
func (s *Service) Simple(ctx context.Context, req GolferRequest) (*Recommendation, error) {
	return s.forGolfer(ctx, simpleRoute, req)
}

// Conditions adjusts with the directional policy and picks the nearest
// carry+rollout.
func (s *Service) Conditions(ctx context.Context, req GolferRequest) (*Recommendation, error) {
	return s.forGolfer(ctx, conditionsRoute, req)
}

func (s *Service) forGolfer(ctx context.Context, r route, req GolferRequest) (*Recommendation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shot.ErrInvalidInput, err)
	}
	if err := checkPoints(req.Position, req.Pin); err != nil {
		return nil, err
	}

	clubs, err := s.clubs.ClubsFor(ctx, req.GolferID)
	if err != nil {
		return nil, err
	}
	perf, err := performances(r.name, profile.Rows(clubs), shot.RequirementFor(r.selector))
	if err != nil {
		return nil, err
	}

	elevation, source := s.resolveElevation(ctx, req)
	adj := r.policy.Adjust(shot.Conditions{
		TargetDistance:  *req.TargetDistance,
		ElevationChange: elevation,
		WindSpeed:       req.WindSpeed,
		WindDirection:   req.WindDirection,
	})

	sel, err := shot.Select(r.selector, perf, adj.AdjustedDistance, req.WindSpeed)
	if err != nil {
		return nil, err
	}
	recommendations.WithLabelValues(r.name, outcomeConfident).Inc()

	// Every record passed validation, so the selection index is also the
	// index into the stored clubs.
	stored := clubs[sel.Index]
	var total *float64
	if stored.Rollout != nil {
		t := stored.Carry + *stored.Rollout
		total = &t
	}
	return &Recommendation{
		Club:             stored.Name,
		Carry:            stored.Carry,
		Rollout:          stored.Rollout,
		TotalDistance:    total,
		Dispersion:       stored.Dispersion,
		TargetDistance:   adj.TargetDistance,
		AdjustedDistance: adj.AdjustedDistance,
		DistanceDiff:     sel.Diff,
		Conditions:       Effects{ElevationEffect: adj.ElevationEffect, WindEffect: adj.WindEffect},
		ElevationSource:  source,
		Policy:           adj.Policy,
		Selector:         sel.Strategy,
	}, nil
}

func (s *Service) resolveElevation(ctx context.Context, req GolferRequest) (float64, string) {
	if req.ElevationChange != nil {
		return *req.ElevationChange, ElevationFromRequest
	}
	if s.elevation == nil || req.Position == nil || req.Pin == nil {
		return 0, ElevationNone
	}
	change, err := s.elevation.ElevationChange(ctx, *req.Position, *req.Pin)
	if err != nil {
		s.logger.Warn().Err(err).Int64("golfer_id", req.GolferID).Msg("elevation lookup failed, assuming flat")
		return 0, ElevationNone
	}
	return change, ElevationFromMaps
}

// Weather runs the dispersion gate over an inline average-distance profile.
// No club qualifying is a normal result with Success false.
func (s *Service) Weather(ctx context.Context, req WeatherRequest) (*WeatherResult, error) {
	if err := validation.Struct(req.CourseDetails); err != nil {
		return nil, fmt.Errorf("%w: %s", shot.ErrInvalidInput, err)
	}
	perf, err := performances(RouteWeather, req.GolferProfile.Clubs, shot.RequirementFor(shot.SelectorDispersionGate))
	if err != nil {
		return nil, err
	}

	cond, source, err := s.currentWeather(ctx, req)
	if err != nil {
		recommendations.WithLabelValues(RouteWeather, outcomeUnavailable).Inc()
		return nil, err
	}
	if cond.WindSpeed < 0 {
		return nil, fmt.Errorf("%w: wind_speed must not be negative", shot.ErrInvalidInput)
	}

	target := *req.CourseDetails.TargetDistance
	sel, err := shot.DispersionGate(perf, target, cond.WindSpeed)
	if err != nil {
		return nil, err
	}

	out := &WeatherResult{Success: sel.Confident, Weather: cond, WeatherSource: source}
	if sel.Confident {
		recommendations.WithLabelValues(RouteWeather, outcomeConfident).Inc()
		out.Recommendation = &WeatherRecommendation{
			Club:                  sel.Club.Name,
			Carry:                 sel.Club.Carry,
			AdjustedCarry:         sel.AdjustedForWind,
			Dispersion:            sel.Club.Dispersion,
			WindFactor:            sel.WindFactor,
			TemperatureAdjustment: cond.Temperature * temperatureFactor,
		}
		return out, nil
	}

	recommendations.WithLabelValues(RouteWeather, outcomeFallback).Inc()
	out.Alternative = &Alternative{
		ClosestClub:   sel.Club.Name,
		AdjustedCarry: sel.AdjustedForWind,
		DistanceDiff:  sel.Diff,
		Suggestion:    sel.Advisory,
	}
	return out, nil
}

func (s *Service) currentWeather(ctx context.Context, req WeatherRequest) (weather.Conditions, string, error) {
	if req.Weather != nil {
		return *req.Weather, "request", nil
	}
	if s.weather == nil {
		return weather.Conditions{}, "", weather.ErrNotConfigured
	}
	at := types.Point{Lat: req.CourseDetails.Latitude, Lng: req.CourseDetails.Longitude}
	cond, err := s.weather.Current(ctx, at)
	if err != nil {
		return weather.Conditions{}, "", err
	}
	return cond, "provider", nil
}

// performances validates every record against the fields the route's
// selector reads; any invalid one aborts the request.
func performances(routeName string, records shot.ClubRecords, need shot.Requirement) ([]shot.Performance, error) {
	perf, bad := records.Performances(need)
	if len(bad) > 0 {
		recommendations.WithLabelValues(routeName, outcomeInvalid).Inc()
		return nil, &InvalidRecordsError{Records: bad}
	}
	if len(perf) == 0 {
		recommendations.WithLabelValues(routeName, outcomeNoRecords).Inc()
		return nil, shot.ErrNoRecords
	}
	return perf, nil
}

func checkPoints(points ...*types.Point) error {
	for _, p := range points {
		if p != nil && !p.Valid() {
			return fmt.Errorf("%w: coordinates out of range", shot.ErrInvalidInput)
		}
	}
	return nil
}

// IsInvalidRecords reports whether err carries per-club validation failures.
func IsInvalidRecords(err error) (*InvalidRecordsError, bool) {
	var ir *InvalidRecordsError
	ok := errors.As(err, &ir)
	return ir, ok
}
