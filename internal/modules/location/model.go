// README: Coordinate points (pins, tees, hazards) and lookup results.
package location

import (
	"errors"
	"time"

	"caddy/internal/types"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoPoints     = errors.New("no location points available")
)

const (
	CategoryPin    = "pin"
	CategoryTee    = "tee"
	CategoryHazard = "hazard"
)

// Point is a stored coordinate. It is never updated once written.
type Point struct {
	ID        int64
	CourseID  *int64
	Name      string
	Category  string
	Position  types.Point
	CreatedAt time.Time
}

// Match is a point together with its distance from the query coordinate.
type Match struct {
	Point          Point
	DistanceMeters float64
}
