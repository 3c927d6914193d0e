// README: Minimal KML reader; extracts Placemarks at any depth.
package course

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"caddy/internal/types"
)

// Placemark is the subset of a KML Placemark the importer uses.
type Placemark struct {
	Name        string
	Description string
	Point       *types.Point
}

type kmlPlacemark struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Point       *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
}

// ParseKML streams r and returns every Placemark in document order, including
// those nested in Folders. Placemarks without a name are returned with an
// empty Name; callers decide whether to skip them.
func ParseKML(r io.Reader) ([]Placemark, error) {
	dec := xml.NewDecoder(r)
	var out []Placemark
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed KML: %v", ErrInvalidInput, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if se.Name.Local != "kml" {
				return nil, fmt.Errorf("%w: root element is <%s>, want <kml>", ErrInvalidInput, se.Name.Local)
			}
			sawRoot = true
			continue
		}
		if se.Name.Local != "Placemark" {
			continue
		}
		var raw kmlPlacemark
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return nil, fmt.Errorf("%w: malformed Placemark: %v", ErrInvalidInput, err)
		}
		pm := Placemark{
			Name:        strings.TrimSpace(raw.Name),
			Description: strings.TrimSpace(raw.Description),
		}
		if raw.Point != nil {
			p, err := parseCoordinates(raw.Point.Coordinates)
			if err != nil {
				return nil, fmt.Errorf("%w: placemark %q: %v", ErrInvalidInput, pm.Name, err)
			}
			pm.Point = &p
		}
		out = append(out, pm)
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: empty KML document", ErrInvalidInput)
	}
	return out, nil
}

// parseCoordinates reads a KML "lng,lat[,alt]" tuple.
func parseCoordinates(s string) (types.Point, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) < 2 {
		return types.Point{}, fmt.Errorf("coordinates %q: want lng,lat[,alt]", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("latitude: %w", err)
	}
	p := types.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return types.Point{}, fmt.Errorf("coordinates %q out of range", s)
	}
	return p, nil
}
