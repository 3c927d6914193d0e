// README: Course service; create, search, fetch and KML import.
package course

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"caddy/internal/modules/location"
	"caddy/internal/types"
	"caddy/internal/validation"
)

const maxSearchResults = 100

type courseStore interface {
	Create(ctx context.Context, c *Course, pins []location.Point) error
	Get(ctx context.Context, id int64) (*Course, error)
	Search(ctx context.Context, q string, limit int) ([]Course, error)
}

// PointIndexer makes committed pin locations searchable by distance.
type PointIndexer interface {
	Index(ctx context.Context, points ...location.Point) error
}

type Service struct {
	store  courseStore
	points PointIndexer
	logger *zerolog.Logger
}

func NewService(store courseStore, points PointIndexer, logger *zerolog.Logger) *Service {
	return &Service{store: store, points: points, logger: logger}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	seen := make(map[int]bool, len(in.Holes))
	for _, h := range in.Holes {
		if seen[h.Number] {
			return nil, fmt.Errorf("%w: hole %d listed twice", ErrInvalidInput, h.Number)
		}
		seen[h.Number] = true
		if (h.Tee != nil && !h.Tee.Valid()) || (h.Pin != nil && !h.Pin.Valid()) {
			return nil, fmt.Errorf("%w: hole %d coordinates out of range", ErrInvalidInput, h.Number)
		}
	}

	c := &Course{
		Name:     in.Name,
		Location: in.Location,
		Par:      in.Par,
		Yardage:  in.Yardage,
		Rating:   in.Rating,
		Slope:    in.Slope,
		Holes:    in.Holes,
	}
	var pins []location.Point
	for _, h := range c.Holes {
		if h.Pin != nil {
			pins = append(pins, pinFor(fmt.Sprintf("%s #%d", c.Name, h.Number), *h.Pin))
		}
	}
	if err := s.store.Create(ctx, c, pins); err != nil {
		return nil, err
	}
	s.index(ctx, pins)
	return c, nil
}

func pinFor(name string, at types.Point) location.Point {
	return location.Point{Name: name, Category: location.CategoryPin, Position: at}
}

// index pushes committed pins into the GEO index. A failure only delays
// them until the next reindex.
func (s *Service) index(ctx context.Context, pins []location.Point) {
	if len(pins) == 0 {
		return
	}
	if err := s.points.Index(ctx, pins...); err != nil {
		s.logger.Warn().Err(err).Int("points", len(pins)).Msg("failed to index course pins")
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid course id", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, q string) ([]Course, error) {
	return s.store.Search(ctx, strings.TrimSpace(q), maxSearchResults)
}

// ImportKML creates a course for every named Placemark. Placemarks that carry
// a Point also become pin locations of that course. Each course is stored
// together with its pin; on failure the courses already stored are returned
// alongside the error.
func (s *Service) ImportKML(ctx context.Context, r io.Reader) (*ImportResult, error) {
	placemarks, err := ParseKML(r)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Courses: []Course{}}
	for _, pm := range placemarks {
		if len(pm.Name) < 2 {
			res.Skipped++
			continue
		}
		c := &Course{Name: pm.Name, Location: pm.Description}
		var pins []location.Point
		if pm.Point != nil {
			pins = []location.Point{pinFor(pm.Name, *pm.Point)}
		}
		if err := s.store.Create(ctx, c, pins); err != nil {
			return res, fmt.Errorf("create course %q: %w", pm.Name, err)
		}
		res.Courses = append(res.Courses, *c)
		res.Points += len(pins)
		s.index(ctx, pins)
	}
	s.logger.Info().
		Int("courses", len(res.Courses)).
		Int("points", res.Points).
		Int("skipped", res.Skipped).
		Msg("kml imported")
	return res, nil
}
