// README: Club selector strategies over validated performance records.
package shot

import (
	"fmt"
	"math"
)

const (
	SelectorNearestCarry   = "nearest_carry"
	SelectorNearestTotal   = "nearest_total"
	SelectorDispersionGate = "dispersion_gate"
)

// gateWindFactor scales wind speed into extra distance for the dispersion gate.
const gateWindFactor = 0.1

// Selection is the outcome of a selector. Confident is false only for the
// dispersion gate fallback, in which case Advisory is set.
type Selection struct {
	Strategy        string
	Club            Performance
	Index           int
	Confident       bool
	Diff            float64
	WindFactor      float64
	AdjustedForWind float64
	Advisory        string
}

// NearestByCarry returns the club whose carry is closest to target. The first
// club wins ties.
func NearestByCarry(clubs []Performance, target float64) (Selection, error) {
	i, diff, err := nearest(clubs, target, func(p Performance) float64 { return p.Carry })
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Strategy:  SelectorNearestCarry,
		Club:      clubs[i],
		Index:     i,
		Confident: true,
		Diff:      diff,
	}, nil
}

// NearestByTotal returns the club whose carry+rollout is closest to target.
// The first club wins ties.
func NearestByTotal(clubs []Performance, target float64) (Selection, error) {
	i, diff, err := nearest(clubs, target, Performance.Total)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Strategy:  SelectorNearestTotal,
		Club:      clubs[i],
		Index:     i,
		Confident: true,
		Diff:      diff,
	}, nil
}

// DispersionGate scans clubs in the given order and accepts the first one
// whose wind-adjusted total reaches target and lands within that club's
// dispersion radius. The scan is not an optimisation: an earlier qualifying
// club beats a later, closer one. When nothing qualifies it returns the club
// with the smallest |total - target| as a non-confident fallback.
func DispersionGate(clubs []Performance, target, windSpeed float64) (Selection, error) {
	if len(clubs) == 0 {
		return Selection{}, ErrNoRecords
	}
	windFactor := windSpeed * gateWindFactor

	closest, closestDiff := -1, math.Inf(1)
	for i, c := range clubs {
		total := c.Total()
		adjusted := total + windFactor
		diff := math.Abs(adjusted - target)
		if adjusted >= target && diff < c.Dispersion {
			return Selection{
				Strategy:        SelectorDispersionGate,
				Club:            c,
				Index:           i,
				Confident:       true,
				Diff:            diff,
				WindFactor:      windFactor,
				AdjustedForWind: adjusted,
			}, nil
		}
		if d := math.Abs(total - target); d < closestDiff {
			closest, closestDiff = i, d
		}
	}

	c := clubs[closest]
	return Selection{
		Strategy:        SelectorDispersionGate,
		Club:            c,
		Index:           closest,
		Confident:       false,
		Diff:            closestDiff,
		WindFactor:      windFactor,
		AdjustedForWind: c.Total() + windFactor,
		Advisory:        Advisory(c.Name),
	}, nil
}

// Advisory is the message attached to a fallback selection.
func Advisory(club string) string {
	return fmt.Sprintf("Use %s for the closest possible shot, and plan for additional shots.", club)
}

// Select dispatches to the named strategy. windSpeed is only used by the
// dispersion gate.
func Select(strategy string, clubs []Performance, target, windSpeed float64) (Selection, error) {
	switch strategy {
	case SelectorNearestCarry:
		return NearestByCarry(clubs, target)
	case SelectorNearestTotal:
		return NearestByTotal(clubs, target)
	case SelectorDispersionGate:
		return DispersionGate(clubs, target, windSpeed)
	default:
		return Selection{}, fmt.Errorf("%w: unknown selector %q", ErrInvalidInput, strategy)
	}
}

func nearest(clubs []Performance, target float64, metric func(Performance) float64) (int, float64, error) {
	if len(clubs) == 0 {
		return 0, 0, ErrNoRecords
	}
	best, minDiff := 0, math.Abs(metric(clubs[0])-target)
	for i := 1; i < len(clubs); i++ {
		if d := math.Abs(metric(clubs[i]) - target); d < minDiff {
			best, minDiff = i, d
		}
	}
	return best, minDiff, nil
}
