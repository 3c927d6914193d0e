// README: Profile service; validation and orchestration over the profile store.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"caddy/internal/validation"
)

const defaultHistoryLimit = 100

type profileStore interface {
	Create(ctx context.Context, g *Golfer, clubs []ClubInput) error
	ReplaceClubs(ctx context.Context, email string, clubs []ClubInput) (int64, error)
	GetByEmail(ctx context.Context, email string) (*Golfer, error)
	GetByID(ctx context.Context, id int64) (*Golfer, error)
	Clubs(ctx context.Context, golferID int64) ([]Club, error)
	AllClubs(ctx context.Context) ([]Club, error)
	InsertShot(ctx context.Context, sh *Shot) error
	Shots(ctx context.Context, golferID int64, limit int) ([]Shot, error)
}

type Service struct {
	store  profileStore
	logger *zerolog.Logger
	now    func() time.Time
}

func NewService(store profileStore, logger *zerolog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Golfer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	normalizeClubs(in.Clubs)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := checkDuplicateClubs(in.Clubs); err != nil {
		return nil, err
	}

	g := &Golfer{Name: in.Name, Email: in.Email, Handicap: in.Handicap}
	if err := s.store.Create(ctx, g, in.Clubs); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("golfer_id", g.ID).Int("clubs", len(in.Clubs)).Msg("golfer profile created")
	return g, nil
}

// UpdateClubs replaces the full club set of the golfer identified by email.
func (s *Service) UpdateClubs(ctx context.Context, in UpdateInput) (int64, error) {
	in.Email = normalizeEmail(in.Email)
	normalizeClubs(in.Clubs)
	if err := validation.Struct(in); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := checkDuplicateClubs(in.Clubs); err != nil {
		return 0, err
	}
	id, err := s.store.ReplaceClubs(ctx, in.Email, in.Clubs)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("golfer_id", id).Int("clubs", len(in.Clubs)).Msg("club set replaced")
	return id, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	g, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	clubs, err := s.store.Clubs(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{Golfer: *g, Clubs: clubs}, nil
}

// ClubsFor returns the golfer's clubs, or ErrNotFound for an unknown golfer.
func (s *Service) ClubsFor(ctx context.Context, golferID int64) ([]Club, error) {
	if golferID <= 0 {
		return nil, fmt.Errorf("%w: golfer_id is required", ErrInvalidInput)
	}
	if _, err := s.store.GetByID(ctx, golferID); err != nil {
		return nil, err
	}
	return s.store.Clubs(ctx, golferID)
}

func (s *Service) AllClubs(ctx context.Context) ([]Club, error) {
	return s.store.AllClubs(ctx)
}

func (s *Service) TrackShot(ctx context.Context, in ShotInput) (*Shot, error) {
	in.Club = strings.TrimSpace(in.Club)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	recorded := s.now().UTC()
	if in.RecordedAt != nil {
		recorded = in.RecordedAt.UTC()
	}
	sh := &Shot{
		GolferID:   in.GolferID,
		Club:       in.Club,
		Distance:   *in.Distance,
		Accuracy:   *in.Accuracy,
		RecordedAt: recorded,
	}
	if err := s.store.InsertShot(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) ShotHistory(ctx context.Context, golferID int64, limit int) ([]Shot, error) {
	if golferID <= 0 {
		return nil, fmt.Errorf("%w: golfer_id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return s.store.Shots(ctx, golferID, limit)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeClubs(clubs []ClubInput) {
	for i := range clubs {
		clubs[i].Name = strings.TrimSpace(clubs[i].Name)
	}
}

func checkDuplicateClubs(clubs []ClubInput) error {
	seen := make(map[string]struct{}, len(clubs))
	for _, c := range clubs {
		key := strings.ToLower(c.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: club %q listed twice", ErrInvalidInput, c.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
