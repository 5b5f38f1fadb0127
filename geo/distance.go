package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"platefinder/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b models.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Box is a latitude/longitude rectangle in degrees.
type Box struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
	// WrapsAntimeridian is set when the box crosses ±180°; then MinLng > MaxLng.
	WrapsAntimeridian bool
}

// BoundingBox returns a rectangle containing every point within radiusKm of center.
func BoundingBox(center models.Coordinates, radiusKm float64) Box {
	angle := s1.Angle(radiusKm / EarthRadiusKm)
	c := s2.CapFromCenterAngle(s2.PointFromLatLng(s2.LatLngFromDegrees(center.Latitude, center.Longitude)), angle)
	rect := c.RectBound()
	lo, hi := rect.Lo(), rect.Hi()
	return Box{
		MinLat:            lo.Lat.Degrees(),
		MinLng:            lo.Lng.Degrees(),
		MaxLat:            hi.Lat.Degrees(),
		MaxLng:            hi.Lng.Degrees(),
		WrapsAntimeridian: rect.Lng.IsInverted(),
	}
}
