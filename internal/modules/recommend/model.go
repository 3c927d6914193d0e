// README: Shot recommendation requests, results and the invalid-records error.
package recommend

import (
	"fmt"
	"strings"

	"caddy/internal/shot"
	"caddy/internal/types"
	"caddy/internal/weather"
)

const (
	RouteSimple     = "simple"
	RouteConditions = "conditions"
	RouteWeather    = "weather"
)

// temperatureFactor scales °C into the reported temperature adjustment.
const temperatureFactor = 0.05

// Elevation sources reported on golfer recommendations.
const (
	ElevationFromRequest = "request"
	ElevationFromMaps    = "maps"
	ElevationNone        = "none"
)

// GolferRequest asks for a club from a stored profile. When ElevationChange
// is omitted and both Position and Pin are given, the change is looked up.
type GolferRequest struct {
	GolferID        int64        `json:"golfer_id" validate:"required,gt=0"`
	TargetDistance  *float64     `json:"target_distance" validate:"required,gt=0,lte=1000"`
	ElevationChange *float64     `json:"elevation_change" validate:"omitempty,gte=-500,lte=500"`
	WindSpeed       float64      `json:"wind_speed" validate:"gte=0,lte=200"`
	WindDirection   float64      `json:"wind_direction" validate:"gte=-360,lte=360"`
	Position        *types.Point `json:"position"`
	Pin             *types.Point `json:"pin"`
}

type Effects struct {
	ElevationEffect float64 `json:"elevation_effect"`
	WindEffect      float64 `json:"wind_effect"`
}

type Recommendation struct {
	Club  string  `json:"recommended_club"`
	Carry float64 `json:"carry_distance"`
	// Rollout, TotalDistance and Dispersion are null when the stored club
	// has no value for them.
	Rollout          *float64 `json:"rollout_distance"`
	TotalDistance    *float64 `json:"total_distance"`
	Dispersion       *float64 `json:"dispersion_radius"`
	TargetDistance   float64  `json:"target_distance"`
	AdjustedDistance float64  `json:"adjusted_distance"`
	DistanceDiff     float64  `json:"distance_diff"`
	Conditions       Effects  `json:"conditions"`
	ElevationSource  string   `json:"elevation_source"`
	Policy           string   `json:"policy"`
	Selector         string   `json:"selector"`
}

// CourseDetails locates the shot for the weather route.
type CourseDetails struct {
	Latitude       float64  `json:"latitude" validate:"latitude"`
	Longitude      float64  `json:"longitude" validate:"longitude"`
	TargetDistance *float64 `json:"target_distance" validate:"required,gt=0,lte=1000"`
}

// WeatherRequest carries an inline average-distance profile. Weather is
// optional; when absent the provider is queried at the course coordinates.
type WeatherRequest struct {
	GolferProfile AverageProfile      `json:"golfer_profile"`
	CourseDetails CourseDetails       `json:"course_details"`
	Weather       *weather.Conditions `json:"weather"`
}

type WeatherRecommendation struct {
	Club                  string  `json:"club"`
	Carry                 float64 `json:"carry"`
	AdjustedCarry         float64 `json:"adjusted_carry"`
	Dispersion            float64 `json:"dispersion"`
	WindFactor            float64 `json:"wind_factor"`
	TemperatureAdjustment float64 `json:"temperature_adjustment"`
}

type Alternative struct {
	ClosestClub   string  `json:"closest_club"`
	AdjustedCarry float64 `json:"adjusted_carry"`
	DistanceDiff  float64 `json:"distance_diff"`
	Suggestion    string  `json:"suggestion"`
}

// WeatherResult is either a confident recommendation or a fallback
// alternative; Success tells which.
type WeatherResult struct {
	Success        bool                   `json:"success"`
	Recommendation *WeatherRecommendation `json:"recommendation,omitempty"`
	Alternative    *Alternative           `json:"alternative,omitempty"`
	Weather        weather.Conditions     `json:"weather"`
	WeatherSource  string                 `json:"weather_source"`
}

// InvalidRecordsError lists every club record that blocked a recommendation.
// It unwraps to shot.ErrInvalidInput.
type InvalidRecordsError struct {
	Records []*shot.InvalidClubError
}

func (e *InvalidRecordsError) Error() string {
	msgs := make([]string, len(e.Records))
	for i, r := range e.Records {
		msgs[i] = r.Error()
	}
	return fmt.Sprintf("invalid club records: %s", strings.Join(msgs, "; "))
}

func (e *InvalidRecordsError) Unwrap() error { return shot.ErrInvalidInput }
