// Package geo holds the spherical distance math shared by the recorder and
// the history views.
package geo

import "github.com/golang/geo/s2"

// EarthRadiusM is the mean Earth radius used for every distance in the system.
const EarthRadiusM = 6371000.0

// Point is a bare coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceM returns the great-circle (haversine) distance in meters.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusM
}

// Average returns the arithmetic mean of the given coordinates. It is used to
// settle a start position from several noisy fixes.
func Average(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	var sum Point
	for _, p := range points {
		sum.Lat += p.Lat
		sum.Lng += p.Lng
	}
	n := float64(len(points))
	return Point{Lat: sum.Lat / n, Lng: sum.Lng / n}, true
}
