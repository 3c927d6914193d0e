// README: Course store backed by PostgreSQL.
package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"caddy/internal/modules/location"
	"caddy/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the course, its holes and its pin locations in one
// transaction. Pins get the new course id and their own ids filled in.
func (s *Store) Create(ctx context.Context, c *Course, pins []location.Point) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO courses (name, location, par, yardage, rating, slope)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			c.Name, c.Location, c.Par, c.Yardage, c.Rating, c.Slope,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return err
		}
		if err := insertPins(ctx, tx, c.ID, pins); err != nil {
			return err
		}
		if len(c.Holes) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, h := range c.Holes {
			teeLat, teeLng := splitPoint(h.Tee)
			pinLat, pinLng := splitPoint(h.Pin)
			batch.Queue(`
				INSERT INTO holes (course_id, hole_number, par, yardage, handicap, tee_lat, tee_lng, pin_lat, pin_lng)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				c.ID, h.Number, h.Par, h.Yardage, h.Handicap, teeLat, teeLng, pinLat, pinLng,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func insertPins(ctx context.Context, tx pgx.Tx, courseID int64, pins []location.Point) error {
	for i := range pins {
		id := courseID
		pins[i].CourseID = &id
		err := tx.QueryRow(ctx, `
			INSERT INTO locations (course_id, name, category, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			courseID, pins[i].Name, pins[i].Category, pins[i].Position.Lat, pins[i].Position.Lng,
		).Scan(&pins[i].ID, &pins[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("insert pin %q: %w", pins[i].Name, err)
		}
	}
	return nil
}

// Get returns the course with its holes ordered by number.
func (s *Store) Get(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := s.db.QueryRow(ctx, `
		SELECT id, name, location, par, yardage, rating, slope, created_at
		FROM courses
		WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Location, &c.Par, &c.Yardage, &c.Rating, &c.Slope, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT hole_number, par, yardage, handicap, tee_lat, tee_lng, pin_lat, pin_lng
		FROM holes
		WHERE course_id = $1
		ORDER BY hole_number`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	c.Holes = []Hole{}
	for rows.Next() {
		var h Hole
		var teeLat, teeLng, pinLat, pinLng *float64
		if err := rows.Scan(&h.Number, &h.Par, &h.Yardage, &h.Handicap, &teeLat, &teeLng, &pinLat, &pinLng); err != nil {
			return nil, err
		}
		h.Tee = joinPoint(teeLat, teeLng)
		h.Pin = joinPoint(pinLat, pinLng)
		c.Holes = append(c.Holes, h)
	}
	return &c, rows.Err()
}

// Search lists courses whose name contains q, case-insensitively. An empty q
// lists everything.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, location, par, yardage, rating, slope, created_at
		FROM courses
		WHERE LOWER(name) LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name, id
		LIMIT $2`, escapeLike(strings.ToLower(q)), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Par, &c.Yardage, &c.Rating, &c.Slope, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func splitPoint(p *types.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lng := p.Lat, p.Lng
	return &lat, &lng
}

func joinPoint(lat, lng *float64) *types.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &types.Point{Lat: *lat, Lng: *lng}
}
