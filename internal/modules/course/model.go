// README: Golf courses and their holes.
package course

import (
	"errors"
	"time"

	"caddy/internal/types"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("course not found")
)

type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Par       *int      `json:"par,omitempty"`
	Yardage   *int      `json:"yardage,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	Slope     *int      `json:"slope,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Holes     []Hole    `json:"holes,omitempty"`
}

type Hole struct {
	Number   int          `json:"hole_number" validate:"required,gte=1,lte=18"`
	Par      int          `json:"par" validate:"required,gte=3,lte=6"`
	Yardage  int          `json:"yardage" validate:"required,gt=0,lte=800"`
	Handicap *int         `json:"handicap,omitempty" validate:"omitempty,gte=1,lte=18"`
	Tee      *types.Point `json:"tee,omitempty"`
	Pin      *types.Point `json:"pin,omitempty"`
}

type CreateInput struct {
	Name     string   `json:"name" validate:"required,min=2,max=200"`
	Location string   `json:"location" validate:"max=200"`
	Par      *int     `json:"par" validate:"omitempty,gte=27,lte=80"`
	Yardage  *int     `json:"yardage" validate:"omitempty,gt=0"`
	Rating   *float64 `json:"rating" validate:"omitempty,gt=0"`
	Slope    *int     `json:"slope" validate:"omitempty,gte=55,lte=155"`
	Holes    []Hole   `json:"holes" validate:"max=18,dive"`
}

// ImportResult summarises a KML import.
type ImportResult struct {
	Courses []Course `json:"courses"`
	Points  int      `json:"points"`
	Skipped int      `json:"skipped"`
}

func intPtr(v int) *int { return &v }

// Seeds are the courses preloaded by the CLI.
func Seeds() []CreateInput {
	return []CreateInput{
		{
			Name:     "Pebble Beach Golf Links",
			Location: "California, USA",
			Par:      intPtr(72),
			Yardage:  intPtr(6828),
			Holes: []Hole{
				{Number: 1, Par: 4, Yardage: 377, Handicap: intPtr(12)},
				{Number: 2, Par: 5, Yardage: 502, Handicap: intPtr(8)},
			},
		},
		{
			Name:     "St Andrews Links",
			Location: "Scotland, UK",
			Par:      intPtr(72),
			Yardage:  intPtr(7310),
			Holes: []Hole{
				{Number: 1, Par: 4, Yardage: 376, Handicap: intPtr(10)},
				{Number: 2, Par: 4, Yardage: 453, Handicap: intPtr(4)},
			},
		},
	}
}
