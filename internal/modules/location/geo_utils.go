// README: GeoDistance on the s2 sphere and a distance ordering helper for nearby results.
package location

import (
	"github.com/golang/geo/s2"

	"crowdradar/internal/types"
)

// EarthRadiusMeters is the mean Earth radius used for all distances.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle (haversine) distance in metres between
// two coordinates. It is symmetric and zero only for identical points.
func Distance(a, b types.Point) float64 {
	// Fixed argument order keeps the floating-point result bit-identical
	// for (a,b) and (b,a).
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lng < a.Lng) {
		a, b = b, a
	}
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// SortByDistance orders items closest first. Stable; nearby batches are small,
// so an insertion sort is used.
func SortByDistance[T any](items []T, dist func(T) float64) {
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
