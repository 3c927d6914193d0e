// README: Club performance records in their two accepted shapes.
package shot

import "math"

// MaxCarry is the upper bound accepted for a carry distance.
const MaxCarry = 400.0

// Requirement names the optional fields a selector reads. Carry and name are
// always required.
type Requirement uint8

const (
	NeedRollout Requirement = 1 << iota
	NeedDispersion
)

func (r Requirement) has(f Requirement) bool { return r&f != 0 }

// RequirementFor returns the fields the named selector reads.
func RequirementFor(strategy string) Requirement {
	switch strategy {
	case SelectorNearestTotal:
		return NeedRollout
	case SelectorDispersionGate:
		return NeedRollout | NeedDispersion
	default:
		return 0
	}
}

// Performance is a validated club record as seen by the selectors. Rollout
// and Dispersion are zero when they were absent and not required.
type Performance struct {
	Name       string
	Carry      float64
	Rollout    float64
	Dispersion float64
}

// Total is carry plus rollout.
func (p Performance) Total() float64 {
	return p.Carry + p.Rollout
}

// ClubRecords is a collection of club performance records. It is implemented
// only by ClubRows and AverageDistances.
type ClubRecords interface {
	// Performances returns the valid records in input order together with a
	// report for every record that was rejected. Fields outside need are
	// checked only when present.
	Performances(need Requirement) ([]Performance, []*InvalidClubError)
	sealed()
}

// ClubRow is one stored club. Nil numeric fields are missing values.
type ClubRow struct {
	Name       string
	Carry      *float64
	Rollout    *float64
	Dispersion *float64
}

// ClubRows is the row-per-club shape kept by the profile store.
type ClubRows []ClubRow

func (ClubRows) sealed() {}

func (rows ClubRows) Performances(need Requirement) ([]Performance, []*InvalidClubError) {
	out := make([]Performance, 0, len(rows))
	var bad []*InvalidClubError
	for i, r := range rows {
		if err := checkName(i, r.Name); err != nil {
			bad = append(bad, err)
			continue
		}
		if err := checkCarry(i, r.Name, r.Carry); err != nil {
			bad = append(bad, err)
			continue
		}
		if err := checkOptional(i, r.Name, "rollout_distance", r.Rollout, need.has(NeedRollout)); err != nil {
			bad = append(bad, err)
			continue
		}
		if err := checkOptional(i, r.Name, "dispersion_radius", r.Dispersion, need.has(NeedDispersion)); err != nil {
			bad = append(bad, err)
			continue
		}
		out = append(out, Performance{
			Name:       r.Name,
			Carry:      *r.Carry,
			Rollout:    valueOrZero(r.Rollout),
			Dispersion: valueOrZero(r.Dispersion),
		})
	}
	return out, bad
}

// AverageClub is one entry of the average-distance shape. It has no rollout.
type AverageClub struct {
	Name       string
	Average    *float64
	Dispersion *float64
}

// AverageDistances is the club name -> {average carry, dispersion} shape.
// Entries keep the order in which the golfer listed them.
type AverageDistances []AverageClub

func (AverageDistances) sealed() {}

// Performances treats rollout as zero; this shape never carries one.
func (avg AverageDistances) Performances(need Requirement) ([]Performance, []*InvalidClubError) {
	out := make([]Performance, 0, len(avg))
	var bad []*InvalidClubError
	for i, a := range avg {
		if err := checkName(i, a.Name); err != nil {
			bad = append(bad, err)
			continue
		}
		if err := checkCarry(i, a.Name, a.Average); err != nil {
			err.Field = "average_distance"
			bad = append(bad, err)
			continue
		}
		if err := checkOptional(i, a.Name, "dispersion", a.Dispersion, need.has(NeedDispersion)); err != nil {
			bad = append(bad, err)
			continue
		}
		out = append(out, Performance{
			Name:       a.Name,
			Carry:      *a.Average,
			Dispersion: valueOrZero(a.Dispersion),
		})
	}
	return out, bad
}

func checkName(i int, name string) *InvalidClubError {
	if name == "" {
		return &InvalidClubError{Index: i, Field: "club_name", Reason: "is required"}
	}
	return nil
}

func checkCarry(i int, name string, v *float64) *InvalidClubError {
	if err := checkNonNegative(i, name, "carry_distance", v); err != nil {
		return err
	}
	if *v > MaxCarry {
		return &InvalidClubError{Index: i, Club: name, Field: "carry_distance", Reason: "exceeds 400"}
	}
	return nil
}

// checkOptional skips an absent field unless it is required. A present value
// must still be finite and non-negative.
func checkOptional(i int, name, field string, v *float64, required bool) *InvalidClubError {
	if v == nil && !required {
		return nil
	}
	return checkNonNegative(i, name, field, v)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func checkNonNegative(i int, name, field string, v *float64) *InvalidClubError {
	switch {
	case v == nil:
		return &InvalidClubError{Index: i, Club: name, Field: field, Reason: "is missing"}
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		return &InvalidClubError{Index: i, Club: name, Field: field, Reason: "is not finite"}
	case *v < 0:
		return &InvalidClubError{Index: i, Club: name, Field: field, Reason: "is negative"}
	}
	return nil
}
