// README: Location store backed by Postgres rows and a Redis GEO index.
package location

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"caddy/internal/types"
)

const pointsGeoKey = "locations:points"

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

// GeoHit is a member of the GEO index with its distance from the search centre.
type GeoHit struct {
	ID             int64
	DistanceMeters float64
}

func (s *Store) Insert(ctx context.Context, p *Point) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO locations (course_id, name, category, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		p.CourseID, p.Name, p.Category, p.Position.Lat, p.Position.Lng,
	).Scan(&p.ID, &p.CreatedAt)
}

// List returns points in insertion order. An empty category matches all.
func (s *Store) List(ctx context.Context, category string) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, course_id, name, category, latitude, longitude, created_at
		FROM locations
		WHERE $1 = '' OR category = $1
		ORDER BY id`, category,
	)
	if err != nil {
		return nil, err
	}
	return scanPoints(rows)
}

func (s *Store) GetMany(ctx context.Context, ids []int64) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, course_id, name, category, latitude, longitude, created_at
		FROM locations
		WHERE id = ANY($1)
		ORDER BY id`, ids,
	)
	if err != nil {
		return nil, err
	}
	return scanPoints(rows)
}

func scanPoints(rows pgx.Rows) ([]Point, error) {
	defer rows.Close()
	var out []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.ID, &p.CourseID, &p.Name, &p.Category, &p.Position.Lat, &p.Position.Lng, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Index adds points to the GEO index. Re-adding a member moves it.
func (s *Store) Index(ctx context.Context, points ...Point) error {
	if len(points) == 0 {
		return nil
	}
	locs := make([]*redis.GeoLocation, len(points))
	for i, p := range points {
		locs[i] = &redis.GeoLocation{
			Name:      strconv.FormatInt(p.ID, 10),
			Longitude: p.Position.Lng,
			Latitude:  p.Position.Lat,
		}
	}
	return s.redis.GeoAdd(ctx, pointsGeoKey, locs...).Err()
}

// SearchRadius returns indexed point ids within radiusM, closest first.
func (s *Store) SearchRadius(ctx context.Context, center types.Point, radiusM float64) ([]GeoHit, error) {
	results, err := s.redis.GeoSearchLocation(ctx, pointsGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lng,
			Latitude:   center.Lat,
			Radius:     radiusM,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	hits := make([]GeoHit, 0, len(results))
	for _, r := range results {
		id, err := strconv.ParseInt(r.Name, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, GeoHit{ID: id, DistanceMeters: r.Dist})
	}
	return hits, nil
}
