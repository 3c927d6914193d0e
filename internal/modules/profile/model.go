// README: Golfer profiles, their club set and tracked shots.
package profile

import (
	"errors"
	"time"

	"caddy/internal/shot"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("golfer profile not found")
	ErrConflict     = errors.New("email already exists")
)

type Golfer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Handicap  *float64  `json:"handicap,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Club is a stored club row. Rollout and dispersion may be absent for clubs
// the golfer has only measured carry for.
type Club struct {
	ID         int64    `json:"id"`
	GolferID   int64    `json:"golfer_id"`
	Name       string   `json:"club_name"`
	Carry      float64  `json:"carry_distance"`
	Rollout    *float64 `json:"rollout_distance"`
	Dispersion *float64 `json:"dispersion_radius"`
}

type Profile struct {
	Golfer Golfer `json:"golfer"`
	Clubs  []Club `json:"clubs"`
}

// ClubInput is a club as submitted on create/update.
type ClubInput struct {
	Name       string   `json:"club_name" validate:"required,max=64"`
	Carry      *float64 `json:"carry_distance" validate:"required,gte=0,lte=400"`
	Rollout    *float64 `json:"rollout_distance" validate:"omitempty,gte=0"`
	Dispersion *float64 `json:"dispersion_radius" validate:"omitempty,gte=0"`
}

type CreateInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=120"`
	Email    string      `json:"email" validate:"required,email"`
	Handicap *float64    `json:"handicap" validate:"omitempty,gte=-10,lte=54"`
	Clubs    []ClubInput `json:"clubs" validate:"dive"`
}

type UpdateInput struct {
	Email string      `json:"email" validate:"required,email"`
	Clubs []ClubInput `json:"clubs" validate:"dive"`
}

type Shot struct {
	ID         int64     `json:"id"`
	GolferID   int64     `json:"golfer_id"`
	Club       string    `json:"club_name"`
	Distance   float64   `json:"distance"`
	Accuracy   float64   `json:"accuracy"`
	RecordedAt time.Time `json:"timestamp"`
}

type ShotInput struct {
	GolferID   int64      `json:"golfer_id" validate:"required,gt=0"`
	Club       string     `json:"club_name" validate:"required"`
	Distance   *float64   `json:"distance" validate:"required,gte=0,lte=500"`
	Accuracy   *float64   `json:"accuracy" validate:"required,gte=0"`
	RecordedAt *time.Time `json:"timestamp"`
}

// Rows converts stored clubs into the record shape the selectors consume.
func Rows(clubs []Club) shot.ClubRows {
	rows := make(shot.ClubRows, len(clubs))
	for i, c := range clubs {
		carry := c.Carry
		rows[i] = shot.ClubRow{
			Name:       c.Name,
			Carry:      &carry,
			Rollout:    c.Rollout,
			Dispersion: c.Dispersion,
		}
	}
	return rows
}
