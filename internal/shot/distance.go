// README: Distance model; turns shot conditions into an adjusted target distance.
package shot

import "math"

// Conditions are the environmental inputs of a single shot. Zero values mean
// "not supplied": flat lie, no wind, tailwind direction.
type Conditions struct {
	TargetDistance  float64
	ElevationChange float64 // positive = uphill
	WindSpeed       float64
	WindDirection   float64 // degrees
}

// Adjustment is the output of a Policy. ElevationEffect and WindEffect are the
// signed contributions added to the target, so
// AdjustedDistance == TargetDistance + ElevationEffect + WindEffect.
type Adjustment struct {
	Policy           string
	TargetDistance   float64
	ElevationEffect  float64
	WindEffect       float64
	AdjustedDistance float64
}

// Policy converts conditions into an adjusted distance. The two policies do
// not agree on the sign of the elevation term; every call site picks one.
type Policy interface {
	Name() string
	Adjust(c Conditions) Adjustment
}

const (
	PolicySimple      = "simple"
	PolicyDirectional = "directional"
)

const (
	simpleElevationFactor      = 0.3
	simpleWindFactor           = 0.5
	directionalElevationFactor = 0.1
	directionalWindFactor      = 0.2
)

var (
	// SimplePolicy: target + elevation*0.3 - wind*0.5. Wind direction is ignored.
	SimplePolicy Policy = simplePolicy{}
	// DirectionalPolicy: target - elevation*0.1 - wind*0.2*cos(direction).
	DirectionalPolicy Policy = directionalPolicy{}
)

type simplePolicy struct{}

func (simplePolicy) Name() string { return PolicySimple }

func (simplePolicy) Adjust(c Conditions) Adjustment {
	elevation := c.ElevationChange * simpleElevationFactor
	wind := -c.WindSpeed * simpleWindFactor
	return Adjustment{
		Policy:           PolicySimple,
		TargetDistance:   c.TargetDistance,
		ElevationEffect:  elevation,
		WindEffect:       wind,
		AdjustedDistance: c.TargetDistance + elevation + wind,
	}
}

type directionalPolicy struct{}

func (directionalPolicy) Name() string { return PolicyDirectional }

func (directionalPolicy) Adjust(c Conditions) Adjustment {
	elevation := -c.ElevationChange * directionalElevationFactor
	wind := -c.WindSpeed * directionalWindFactor * math.Cos(degreesToRadians(c.WindDirection))
	return Adjustment{
		Policy:           PolicyDirectional,
		TargetDistance:   c.TargetDistance,
		ElevationEffect:  elevation,
		WindEffect:       wind,
		AdjustedDistance: c.TargetDistance + elevation + wind,
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
