package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy/internal/testutil"
)

func TestStore_CreateReplaceAndRead(t *testing.T) {
	db := testutil.Postgres(t, "golfer_profiles", "clubs", "shot_tracking")
	store := NewStore(db)
	ctx := context.Background()

	g := &Golfer{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, store.Create(ctx, g, []ClubInput{
		{Name: "PW", Carry: fp(120), Rollout: fp(3), Dispersion: fp(5)},
		{Name: "Driver", Carry: fp(250), Rollout: fp(20), Dispersion: fp(15)},
	}))
	assert.NotZero(t, g.ID)

	clubs, err := store.Clubs(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "PW", clubs[0].Name, "submission order is preserved")

	err = store.Create(ctx, &Golfer{Name: "Ann 2", Email: "ann@example.com"}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	id, err := store.ReplaceClubs(ctx, "ann@example.com", []ClubInput{{Name: "3Wood", Carry: fp(220)}})
	require.NoError(t, err)
	assert.Equal(t, g.ID, id)
	clubs, err = store.Clubs(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Nil(t, clubs[0].Dispersion)

	_, err = store.ReplaceClubs(ctx, "nobody@example.com", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Shots(t *testing.T) {
	db := testutil.Postgres(t, "golfer_profiles", "clubs", "shot_tracking")
	store := NewStore(db)
	ctx := context.Background()

	g := &Golfer{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, store.Create(ctx, g, nil))

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i, club := range []string{"Driver", "7Iron", "PW"} {
		require.NoError(t, store.InsertShot(ctx, &Shot{GolferID: g.ID, Club: club, Distance: 100, Accuracy: 1, RecordedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	shots, err := store.Shots(ctx, g.ID, 2)
	require.NoError(t, err)
	require.Len(t, shots, 2)
	assert.Equal(t, "PW", shots[0].Club)

	err = store.InsertShot(ctx, &Shot{GolferID: 9999, Club: "PW", RecordedAt: base})
	assert.ErrorIs(t, err, ErrNotFound)
}
