package geo

import (
	"github.com/golang/geo/s2"
)

// MidPoint returns the geographic midpoint of the geodesic between
// (lat1,lon1) and (lat2,lon2), in degrees.
func MidPoint(lat1, lon1 float64, lat2, lon2 float64) (float64, float64) {
	p1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lon1))
	p2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lon2))

	mid := s2.Interpolate(0.5, p1, p2)
	midLatLng := s2.LatLngFromPoint(mid)
	return midLatLng.Lat.Degrees(), midLatLng.Lng.Degrees()
}
