// README: Location service; nearest-pin lookups, radius searches and point registration.
package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"caddy/internal/types"
)

// MaxRadiusMeters bounds radius searches.
const MaxRadiusMeters = 50000.0

type pointStore interface {
	Insert(ctx context.Context, p *Point) error
	List(ctx context.Context, category string) ([]Point, error)
	GetMany(ctx context.Context, ids []int64) ([]Point, error)
	Index(ctx context.Context, points ...Point) error
	SearchRadius(ctx context.Context, center types.Point, radiusM float64) ([]GeoHit, error)
}

type Service struct {
	store  pointStore
	logger *zerolog.Logger
}

func NewService(store pointStore, logger *zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Closest returns the stored point nearest to q using the flat-plane
// approximation. category narrows the candidate set when non-empty.
func (s *Service) Closest(ctx context.Context, q types.Point, category string) (Match, error) {
	if !q.Valid() {
		return Match{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	points, err := s.store.List(ctx, strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		return Match{}, fmt.Errorf("list points: %w", err)
	}
	return Nearest(q, points)
}

// Nearby returns points within radiusM of q ordered by distance. The Redis GEO
// index is consulted first; if it is unavailable the points table is scanned.
func (s *Service) Nearby(ctx context.Context, q types.Point, radiusM float64) ([]Match, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if !(radiusM > 0) || radiusM > MaxRadiusMeters {
		return nil, fmt.Errorf("%w: radius_m must be in (0, %.0f]", ErrInvalidInput, MaxRadiusMeters)
	}

	hits, err := s.store.SearchRadius(ctx, q, radiusM)
	if err != nil {
		s.logger.Warn().Err(err).Msg("geo index unavailable, scanning points table")
		return s.scanNearby(ctx, q, radiusM)
	}
	if len(hits) == 0 {
		return []Match{}, nil
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	points, err := s.store.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load points: %w", err)
	}
	byID := make(map[int64]Point, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		p, ok := byID[h.ID]
		if !ok {
			continue
		}
		out = append(out, Match{Point: p, DistanceMeters: h.DistanceMeters})
	}
	return out, nil
}

func (s *Service) scanNearby(ctx context.Context, q types.Point, radiusM float64) ([]Match, error) {
	points, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	out := []Match{}
	for _, p := range points {
		d := haversineKm(q.Lat, q.Lng, p.Position.Lat, p.Position.Lng) * 1000
		if d <= radiusM {
			out = append(out, Match{Point: p, DistanceMeters: d})
		}
	}
	sortByDistance(out, func(m Match) float64 { return m.DistanceMeters })
	return out, nil
}

// Add validates and stores a point, then indexes it for radius searches. An
// indexing failure is logged; the row is still the source of truth.
func (s *Service) Add(ctx context.Context, p Point) (*Point, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Category == "" {
		p.Category = CategoryPin
	}
	if !p.Position.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if err := s.store.Insert(ctx, &p); err != nil {
		return nil, fmt.Errorf("insert point: %w", err)
	}
	if err := s.store.Index(ctx, p); err != nil {
		s.logger.Warn().Err(err).Int64("point_id", p.ID).Msg("failed to index point")
	}
	return &p, nil
}

// Index adds points that are already stored to the GEO index.
func (s *Service) Index(ctx context.Context, points ...Point) error {
	return s.store.Index(ctx, points...)
}

// Reindex rebuilds the GEO index from the points table and returns the
// number of points indexed.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	points, err := s.store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list points: %w", err)
	}
	if err := s.store.Index(ctx, points...); err != nil {
		return 0, fmt.Errorf("index points: %w", err)
	}
	return len(points), nil
}

// RunReindexScheduler rebuilds the GEO index every interval until ctx is
// done. Points written while Redis was unreachable become searchable again on
// the next tick. A non-positive interval disables the loop.
func (s *Service) RunReindexScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reindex(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("scheduled reindex failed")
				continue
			}
			s.logger.Debug().Int("points", n).Msg("geo index refreshed")
		}
	}
}
