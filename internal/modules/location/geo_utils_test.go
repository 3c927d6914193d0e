package location

import (
	"math"
	"testing"

	"caddy/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 36.5686, lng1: -121.9505,
			lat2: 36.5686, lng2: -121.9505,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name: "Pebble Beach to Cypress Point (~3.3km)",
			lat1: 36.5686, lng1: -121.9505,
			lat2: 36.5810, lng2: -121.9850,
			wantKm:    3.38,
			tolerance: 0.1,
		},
		{
			name: "St Andrews to Pebble Beach (~8200km)",
			lat1: 56.3433, lng1: -2.8030,
			lat2: 36.5686, lng2: -121.9505,
			wantKm:    8205,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := haversineKm(25.0, 121.0, 26.0, 122.0)
	d2 := haversineKm(26.0, 122.0, 25.0, 121.0)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

func pt(id int64, lat, lng float64) Point {
	return Point{ID: id, Name: "p", Category: CategoryPin, Position: types.Point{Lat: lat, Lng: lng}}
}

func TestNearest_ZeroDistance(t *testing.T) {
	m, err := Nearest(types.Point{}, []Point{pt(1, 0, 0), pt(2, 1, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Point.ID != 1 {
		t.Errorf("expected point 1, got %d", m.Point.ID)
	}
	if m.DistanceMeters != 0 {
		t.Errorf("expected 0m, got %f", m.DistanceMeters)
	}
}

func TestNearest_OneDegree(t *testing.T) {
	m, err := Nearest(types.Point{}, []Point{pt(1, 0, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.DistanceMeters-metersPerDegree) > 1e-6 {
		t.Errorf("expected %f, got %f", metersPerDegree, m.DistanceMeters)
	}
}

func TestNearest_OrderIndependentValue(t *testing.T) {
	q := types.Point{Lat: 36.5686, Lng: -121.9505}
	points := []Point{
		pt(1, 36.5700, -121.9500),
		pt(2, 36.5690, -121.9510),
		pt(3, 36.6000, -121.9000),
		pt(4, 36.5600, -121.9600),
	}
	want, err := Nearest(q, points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reversed := make([]Point, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}
	got, err := Nearest(q, reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Point.ID != want.Point.ID || got.DistanceMeters != want.DistanceMeters {
		t.Errorf("order changed result: %+v vs %+v", got, want)
	}
}

// Ties go to the first point in input order, so the winner's identity follows
// the order while the distance does not.
func TestNearest_TieKeepsFirst(t *testing.T) {
	a := pt(1, 0, 1)
	b := pt(2, 1, 0)

	m, _ := Nearest(types.Point{}, []Point{a, b})
	if m.Point.ID != 1 {
		t.Errorf("expected first point to win tie, got %d", m.Point.ID)
	}
	m2, _ := Nearest(types.Point{}, []Point{b, a})
	if m2.Point.ID != 2 {
		t.Errorf("expected first point to win tie, got %d", m2.Point.ID)
	}
	if m.DistanceMeters != m2.DistanceMeters {
		t.Errorf("tie distances differ: %f vs %f", m.DistanceMeters, m2.DistanceMeters)
	}
}

func TestNearest_Empty(t *testing.T) {
	if _, err := Nearest(types.Point{}, nil); err != ErrNoPoints {
		t.Errorf("expected ErrNoPoints, got %v", err)
	}
}

func TestSortByDistance_Matches(t *testing.T) {
	matches := []Match{
		{Point: pt(3, 0, 0), DistanceMeters: 5.0},
		{Point: pt(1, 0, 0), DistanceMeters: 1.0},
		{Point: pt(2, 0, 0), DistanceMeters: 3.0},
	}

	sortByDistance(matches, func(m Match) float64 { return m.DistanceMeters })

	if matches[0].Point.ID != 1 || matches[1].Point.ID != 2 || matches[2].Point.ID != 3 {
		t.Errorf("unexpected sort order: %v", matches)
	}
}

func TestSortByDistance_Empty(t *testing.T) {
	var matches []Match
	sortByDistance(matches, func(m Match) float64 { return m.DistanceMeters })
}
