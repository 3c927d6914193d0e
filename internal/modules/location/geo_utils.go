// README: Pure geographic helpers; flat-plane nearest point and haversine distances.
package location

import (
	"math"

	"caddy/internal/types"
)

const (
	earthRadiusKm = 6371.0

	// metersPerDegree treats one degree of latitude or longitude as the same
	// linear distance. Good enough across a golf hole, wrong across a country.
	metersPerDegree = 111139.0
)

// Nearest scans points in order and returns the one with the smallest squared
// planar distance (in degrees) from the query, converted to metres. On ties the
// first point wins; the slice is never reordered.
func Nearest(q types.Point, points []Point) (Match, error) {
	if len(points) == 0 {
		return Match{}, ErrNoPoints
	}
	best, minSq := 0, squaredDegrees(q, points[0].Position)
	for i := 1; i < len(points); i++ {
		if d := squaredDegrees(q, points[i].Position); d < minSq {
			best, minSq = i, d
		}
	}
	return Match{Point: points[best], DistanceMeters: math.Sqrt(minSq) * metersPerDegree}, nil
}

func squaredDegrees(a, b types.Point) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng
	return dLat*dLat + dLng*dLng
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// sortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function. Equal
// distances keep their input order.
func sortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
