// README: Google Maps elevation lookups; turns two coordinates into a height change.
package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"caddy/internal/types"
)

// metersToYards converts Google's metre elevations to the yardage the
// distance model works in.
const metersToYards = 1.09361

var ErrNotConfigured = errors.New("maps api key not configured")

// ElevationService handles interactions with the Google Maps Elevation API.
type ElevationService struct {
	client *maps.Client
}

// NewElevationService creates a service for apiKey. Extra client options
// (base URL, HTTP client) are passed through to the maps client.
func NewElevationService(apiKey string, opts ...maps.ClientOption) (*ElevationService, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &ElevationService{client: client}, nil
}

// ElevationChange returns the height of to minus the height of from, in
// yards. Positive means the target sits uphill.
func (s *ElevationService) ElevationChange(ctx context.Context, from, to types.Point) (float64, error) {
	r := &maps.ElevationRequest{
		Locations: []maps.LatLng{
			{Lat: from.Lat, Lng: from.Lng},
			{Lat: to.Lat, Lng: to.Lng},
		},
	}
	results, err := s.client.Elevation(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) != 2 {
		return 0, fmt.Errorf("maps api returned %d elevations, want 2", len(results))
	}
	return (results[1].Elevation - results[0].Elevation) * metersToYards, nil
}
