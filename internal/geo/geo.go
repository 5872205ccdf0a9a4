// Package geo maps geographic coordinates onto the globe's scene space.
// The globe is a unit sphere centred on the origin with +Y through the north
// pole, matching the equirectangular Earth texture wrapped around it.
package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EarthRadiusKm is the mean Earth radius used to scale altitudes.
	EarthRadiusKm = 6371.0

	// GlobeRadius is the radius of the Earth sphere in scene units.
	GlobeRadius = 1.0

	// MinHeight keeps even the lowest satellite visibly off the surface.
	MinHeight = 0.05

	// AltitudeExaggeration stretches real altitudes so low-Earth orbits
	// read as distinct shells at dashboard scale.
	AltitudeExaggeration = 2.0
)

// ToCartesian converts a latitude/longitude pair (degrees) into a point on a
// sphere of radius radius+height. Longitude is offset by 180° so that 0° falls
// on the texture seam convention used by the Earth material.
//
// Domain: latitude in [-90, 90], longitude in [-180, 180], radius > 0,
// height >= 0. Inputs outside the domain still produce a finite point.
func ToCartesian(latitude, longitude, radius, height float64) mgl64.Vec3 {
	phi := mgl64.DegToRad(90 - latitude)
	theta := mgl64.DegToRad(longitude + 180)
	r := radius + height

	return mgl64.Vec3{
		-(r * math.Sin(phi) * math.Cos(theta)),
		r * math.Cos(phi),
		r * math.Sin(phi) * math.Sin(theta),
	}
}

// AltitudeHeight maps an altitude in kilometres to a visual height above the
// globe surface. The mapping is strictly increasing in altitude.
func AltitudeHeight(altitudeKm float64) float64 {
	if altitudeKm < 0 {
		altitudeKm = 0
	}
	return MinHeight + altitudeKm/EarthRadiusKm*AltitudeExaggeration
}

// East returns the unit vector pointing east at the surface direction u.
// At the poles, where east is undefined, +X is used.
func East(u mgl64.Vec3) mgl64.Vec3 {
	e := mgl64.Vec3{0, 1, 0}.Cross(u)
	if e.Len() < 1e-9 {
		return mgl64.Vec3{1, 0, 0}
	}
	return e.Normalize()
}
