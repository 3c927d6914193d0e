package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy/internal/modules/profile"
	"caddy/internal/shot"
	"caddy/internal/types"
	"caddy/internal/weather"
)

type fakeClubs struct {
	clubs []profile.Club
	err   error
}

func (f fakeClubs) ClubsFor(context.Context, int64) ([]profile.Club, error) {
	return f.clubs, f.err
}

type fakeWeather struct {
	cond  weather.Conditions
	err   error
	calls int
}

func (f *fakeWeather) Current(context.Context, types.Point) (weather.Conditions, error) {
	f.calls++
	return f.cond, f.err
}

type fakeElevation struct {
	change float64
	err    error
}

func (f fakeElevation) ElevationChange(context.Context, types.Point, types.Point) (float64, error) {
	return f.change, f.err
}

func fp(v float64) *float64 { return &v }

// Scenario A bag.
func bag() []profile.Club {
	return []profile.Club{
		{Name: "Driver", Carry: 250, Rollout: fp(20), Dispersion: fp(15)},
		{Name: "7Iron", Carry: 150, Rollout: fp(5), Dispersion: fp(8)},
		{Name: "PW", Carry: 120, Rollout: fp(3), Dispersion: fp(5)},
	}
}

func newSvc(clubs clubSource, wx WeatherSource, elev ElevationSource) *Service {
	logger := zerolog.Nop()
	return NewService(clubs, wx, elev, &logger)
}

func TestSimple_ExactCarry(t *testing.T) {
	rec, err := newSvc(fakeClubs{clubs: bag()}, nil, nil).Simple(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "7Iron", rec.Club)
	assert.Equal(t, 0.0, rec.DistanceDiff)
	assert.Equal(t, shot.PolicySimple, rec.Policy)
	assert.Equal(t, shot.SelectorNearestCarry, rec.Selector)
	assert.Equal(t, ElevationNone, rec.ElevationSource)
}

func TestSimple_CarryOnlyProfile(t *testing.T) {
	clubs := []profile.Club{
		{Name: "7Iron", Carry: 150},
		{Name: "PW", Carry: 120},
	}
	rec, err := newSvc(fakeClubs{clubs: clubs}, nil, nil).Simple(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "7Iron", rec.Club)
	assert.Equal(t, 150.0, rec.Carry)
	assert.Nil(t, rec.Rollout)
	assert.Nil(t, rec.TotalDistance)
	assert.Nil(t, rec.Dispersion)
}

func TestConditions_CarryOnlyProfileIsInvalid(t *testing.T) {
	clubs := []profile.Club{{Name: "7Iron", Carry: 150}}
	_, err := newSvc(fakeClubs{clubs: clubs}, nil, nil).Conditions(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(150),
	})
	var invalid *InvalidRecordsError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Records, 1)
}

func TestSimple_AdjustsTarget(t *testing.T) {
	// 150 + 10*0.3 - 10*0.5 = 148; 7Iron is still nearest.
	rec, err := newSvc(fakeClubs{clubs: bag()}, nil, nil).Simple(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(150), ElevationChange: fp(10), WindSpeed: 10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 148.0, rec.AdjustedDistance, 1e-9)
	assert.InDelta(t, 3.0, rec.Conditions.ElevationEffect, 1e-9)
	assert.InDelta(t, -5.0, rec.Conditions.WindEffect, 1e-9)
	assert.Equal(t, ElevationFromRequest, rec.ElevationSource)
}

func TestConditions_UsesTotalAndLooksUpElevation(t *testing.T) {
	pos := types.Point{Lat: 36.5674, Lng: -121.95}
	pin := types.Point{Lat: 36.5680, Lng: -121.949}
	// Downhill by 20: 125 - (-20*0.1) = 127. PW total 123 (diff 4) beats 7Iron total 155.
	rec, err := newSvc(fakeClubs{clubs: bag()}, nil, fakeElevation{change: -20}).Conditions(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(125), Position: &pos, Pin: &pin,
	})
	require.NoError(t, err)
	assert.Equal(t, "PW", rec.Club)
	assert.InDelta(t, 127.0, rec.AdjustedDistance, 1e-9)
	require.NotNil(t, rec.TotalDistance)
	assert.InDelta(t, 123.0, *rec.TotalDistance, 1e-9)
	assert.Equal(t, ElevationFromMaps, rec.ElevationSource)
	assert.Equal(t, shot.SelectorNearestTotal, rec.Selector)
}

func TestConditions_ElevationFailureAssumesFlat(t *testing.T) {
	pos := types.Point{Lat: 1, Lng: 1}
	rec, err := newSvc(fakeClubs{clubs: bag()}, nil, fakeElevation{err: errors.New("quota")}).Conditions(context.Background(), GolferRequest{
		GolferID: 1, TargetDistance: fp(150), Position: &pos, Pin: &pos,
	})
	require.NoError(t, err)
	assert.Equal(t, ElevationNone, rec.ElevationSource)
	assert.Zero(t, rec.Conditions.ElevationEffect)
}

func TestGolfer_NoClubs(t *testing.T) {
	_, err := newSvc(fakeClubs{}, nil, nil).Simple(context.Background(), GolferRequest{GolferID: 1, TargetDistance: fp(150)})
	assert.ErrorIs(t, err, shot.ErrNoRecords)
}

func TestGolfer_UnknownGolfer(t *testing.T) {
	_, err := newSvc(fakeClubs{err: profile.ErrNotFound}, nil, nil).Simple(context.Background(), GolferRequest{GolferID: 9, TargetDistance: fp(150)})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestGolfer_InvalidRequest(t *testing.T) {
	svc := newSvc(fakeClubs{clubs: bag()}, nil, nil)
	_, err := svc.Simple(context.Background(), GolferRequest{GolferID: 1})
	assert.ErrorIs(t, err, shot.ErrInvalidInput)

	_, err = svc.Simple(context.Background(), GolferRequest{GolferID: 1, TargetDistance: fp(150), WindSpeed: -3})
	assert.ErrorIs(t, err, shot.ErrInvalidInput)

	bad := types.Point{Lat: 100}
	_, err = svc.Conditions(context.Background(), GolferRequest{GolferID: 1, TargetDistance: fp(150), Pin: &bad})
	assert.ErrorIs(t, err, shot.ErrInvalidInput)
}

func TestGolfer_IncompleteClubAborts(t *testing.T) {
	clubs := append(bag(), profile.Club{Name: "3Wood", Carry: 220})
	_, err := newSvc(fakeClubs{clubs: clubs}, nil, nil).Conditions(context.Background(), GolferRequest{GolferID: 1, TargetDistance: fp(150)})
	require.ErrorIs(t, err, shot.ErrInvalidInput)

	ir, ok := IsInvalidRecords(err)
	require.True(t, ok)
	require.Len(t, ir.Records, 1)
	assert.Equal(t, "3Wood", ir.Records[0].Club)
	assert.Equal(t, "rollout_distance", ir.Records[0].Field)
	assert.Equal(t, "club 3Wood: rollout_distance is missing", ir.Records[0].Error())
}

func decodeWeather(t *testing.T, body string) WeatherRequest {
	t.Helper()
	var req WeatherRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestWeather_FirstQualifyingClubInDocumentOrder(t *testing.T) {
	// Both qualify at 150 with no wind; 6Iron is listed first and wins even
	// though 7Iron is closer.
	req := decodeWeather(t, `{
		"golfer_profile": {
			"avg_distances": {"6Iron": 156, "7Iron": 150, "PW": 120},
			"dispersion": {"PW": 5, "7Iron": 8, "6Iron": 10}
		},
		"course_details": {"latitude": 36.5, "longitude": -121.9, "target_distance": 150},
		"weather": {"temperature": 20, "humidity": 50, "wind_speed": 0, "wind_direction": 0, "condition": "clear"}
	}`)
	wx := &fakeWeather{}
	res, err := newSvc(nil, wx, nil).Weather(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "6Iron", res.Recommendation.Club)
	assert.InDelta(t, 1.0, res.Recommendation.TemperatureAdjustment, 1e-9)
	assert.Equal(t, "request", res.WeatherSource)
	assert.Zero(t, wx.calls)
}

func TestWeather_FallbackAlternative(t *testing.T) {
	req := decodeWeather(t, `{
		"golfer_profile": {
			"avg_distances": {"Driver": 240, "7Iron": 150},
			"dispersion": {"Driver": 20, "7Iron": 8}
		},
		"course_details": {"latitude": 36.5, "longitude": -121.9, "target_distance": 300}
	}`)
	wx := &fakeWeather{cond: weather.Conditions{Temperature: 10, WindSpeed: 5}}
	res, err := newSvc(nil, wx, nil).Weather(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Recommendation)
	require.NotNil(t, res.Alternative)
	assert.Equal(t, "Driver", res.Alternative.ClosestClub)
	assert.InDelta(t, 60.0, res.Alternative.DistanceDiff, 1e-9)
	assert.InDelta(t, 240.5, res.Alternative.AdjustedCarry, 1e-9)
	assert.Equal(t, "Use Driver for the closest possible shot, and plan for additional shots.", res.Alternative.Suggestion)
	assert.Equal(t, "provider", res.WeatherSource)
	assert.Equal(t, 1, wx.calls)
}

func TestWeather_ProviderUnavailable(t *testing.T) {
	req := decodeWeather(t, `{
		"golfer_profile": {"avg_distances": {"7Iron": 150}, "dispersion": {"7Iron": 8}},
		"course_details": {"latitude": 36.5, "longitude": -121.9, "target_distance": 150}
	}`)
	_, err := newSvc(nil, &fakeWeather{err: weather.ErrUnavailable}, nil).Weather(context.Background(), req)
	assert.ErrorIs(t, err, weather.ErrUnavailable)

	_, err = newSvc(nil, nil, nil).Weather(context.Background(), req)
	assert.ErrorIs(t, err, weather.ErrNotConfigured)
}

func TestWeather_MissingDispersionIsInvalid(t *testing.T) {
	req := decodeWeather(t, `{
		"golfer_profile": {"avg_distances": {"7Iron": 150, "PW": null}, "dispersion": {"PW": 5}},
		"course_details": {"latitude": 0, "longitude": 0, "target_distance": 150},
		"weather": {"wind_speed": 0}
	}`)
	_, err := newSvc(nil, nil, nil).Weather(context.Background(), req)
	ir, ok := IsInvalidRecords(err)
	require.True(t, ok)
	require.Len(t, ir.Records, 2)
	assert.Equal(t, "dispersion", ir.Records[0].Field)
	assert.Equal(t, "average_distance", ir.Records[1].Field)
}

func TestWeather_EmptyProfile(t *testing.T) {
	req := decodeWeather(t, `{
		"golfer_profile": {"avg_distances": {}, "dispersion": {}},
		"course_details": {"latitude": 0, "longitude": 0, "target_distance": 150},
		"weather": {"wind_speed": 0}
	}`)
	_, err := newSvc(nil, nil, nil).Weather(context.Background(), req)
	assert.ErrorIs(t, err, shot.ErrNoRecords)
}

func TestWeather_MissingTarget(t *testing.T) {
	req := decodeWeather(t, `{
		"golfer_profile": {"avg_distances": {"7Iron": 150}, "dispersion": {"7Iron": 8}},
		"course_details": {"latitude": 0, "longitude": 0}
	}`)
	_, err := newSvc(nil, nil, nil).Weather(context.Background(), req)
	assert.ErrorIs(t, err, shot.ErrInvalidInput)
}
