// README: Profile store backed by PostgreSQL; club sets are replaced inside one transaction.
package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the golfer and its clubs atomically.
func (s *Store) Create(ctx context.Context, g *Golfer, clubs []ClubInput) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO golfer_profiles (name, email, handicap)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			g.Name, g.Email, g.Handicap,
		).Scan(&g.ID, &g.CreatedAt)
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		return insertClubs(ctx, tx, g.ID, clubs)
	})
}

// ReplaceClubs swaps the whole club set of the golfer with the given email.
func (s *Store) ReplaceClubs(ctx context.Context, email string, clubs []ClubInput) (int64, error) {
	var golferID int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT id FROM golfer_profiles WHERE email = $1 FOR UPDATE`, email).Scan(&golferID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM clubs WHERE golfer_id = $1`, golferID); err != nil {
			return err
		}
		return insertClubs(ctx, tx, golferID, clubs)
	})
	return golferID, err
}

func insertClubs(ctx context.Context, tx pgx.Tx, golferID int64, clubs []ClubInput) error {
	if len(clubs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, c := range clubs {
		batch.Queue(`
			INSERT INTO clubs (golfer_id, position, club_name, carry_distance, rollout_distance, dispersion_radius)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			golferID, i, c.Name, *c.Carry, c.Rollout, c.Dispersion,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Golfer, error) {
	return s.getGolfer(ctx, `WHERE email = $1`, email)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Golfer, error) {
	return s.getGolfer(ctx, `WHERE id = $1`, id)
}

func (s *Store) getGolfer(ctx context.Context, where string, arg any) (*Golfer, error) {
	var g Golfer
	err := s.db.QueryRow(ctx, `
		SELECT id, name, email, handicap, created_at
		FROM golfer_profiles `+where, arg,
	).Scan(&g.ID, &g.Name, &g.Email, &g.Handicap, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Clubs returns the golfer's clubs in the order they were submitted.
func (s *Store) Clubs(ctx context.Context, golferID int64) ([]Club, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, golfer_id, club_name, carry_distance, rollout_distance, dispersion_radius
		FROM clubs
		WHERE golfer_id = $1
		ORDER BY position, id`, golferID,
	)
	if err != nil {
		return nil, err
	}
	return scanClubs(rows)
}

func (s *Store) AllClubs(ctx context.Context) ([]Club, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, golfer_id, club_name, carry_distance, rollout_distance, dispersion_radius
		FROM clubs
		ORDER BY golfer_id, position, id`)
	if err != nil {
		return nil, err
	}
	return scanClubs(rows)
}

func scanClubs(rows pgx.Rows) ([]Club, error) {
	defer rows.Close()
	out := []Club{}
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.ID, &c.GolferID, &c.Name, &c.Carry, &c.Rollout, &c.Dispersion); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) InsertShot(ctx context.Context, sh *Shot) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO shot_tracking (golfer_id, club_name, distance, accuracy, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		sh.GolferID, sh.Club, sh.Distance, sh.Accuracy, sh.RecordedAt,
	).Scan(&sh.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrNotFound
	}
	return err
}

// Shots returns the golfer's shot history, newest first.
func (s *Store) Shots(ctx context.Context, golferID int64, limit int) ([]Shot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, golfer_id, club_name, distance, accuracy, recorded_at
		FROM shot_tracking
		WHERE golfer_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`, golferID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Shot{}
	for rows.Next() {
		var sh Shot
		if err := rows.Scan(&sh.ID, &sh.GolferID, &sh.Club, &sh.Distance, &sh.Accuracy, &sh.RecordedAt); err != nil {
			return nil, err
		}
		sh.RecordedAt = sh.RecordedAt.UTC()
		out = append(out, sh)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
