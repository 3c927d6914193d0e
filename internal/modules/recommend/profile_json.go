package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"caddy/internal/shot"
)

// AverageProfile is the {avg_distances, dispersion} golfer profile. The
// dispersion gate is order dependent, so avg_distances keys keep the order
// they were written in.
type AverageProfile struct {
	Clubs shot.AverageDistances
}

func (p *AverageProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		AvgDistances json.RawMessage     `json:"avg_distances"`
		Dispersion   map[string]*float64 `json:"dispersion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names, averages, err := decodeOrderedNumbers(raw.AvgDistances)
	if err != nil {
		return fmt.Errorf("avg_distances: %w", err)
	}
	clubs := make(shot.AverageDistances, len(names))
	for i, name := range names {
		clubs[i] = shot.AverageClub{
			Name:       name,
			Average:    averages[name],
			Dispersion: raw.Dispersion[name],
		}
	}
	p.Clubs = clubs
	return nil
}

// decodeOrderedNumbers reads a JSON object of number-or-null values and
// returns its keys in document order. A repeated key keeps its first position
// and its last value.
func decodeOrderedNumbers(raw json.RawMessage) ([]string, map[string]*float64, error) {
	values := map[string]*float64{}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, values, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object")
	}

	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return nil, nil, err
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		switch v := tok.(type) {
		case float64:
			values[key] = &v
		case nil:
			values[key] = nil
		default:
			return nil, nil, fmt.Errorf("value for %q must be a number", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return order, values, nil
}
