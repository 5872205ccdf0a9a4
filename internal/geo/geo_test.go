package geo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestToCartesianDistanceFromOrigin(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 15 {
			for _, tc := range []struct{ radius, height float64 }{
				{1, 0},
				{1, 0.27},
				{6371, 700},
				{0.5, 3},
			} {
				p := ToCartesian(lat, lon, tc.radius, tc.height)
				want := tc.radius + tc.height
				if got := p.Len(); math.Abs(got-want) > 1e-9*want {
					t.Fatalf("ToCartesian(%v, %v, %v, %v) distance = %v, want %v", lat, lon, tc.radius, tc.height, got, want)
				}
			}
		}
	}
}

func TestToCartesianKnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     mgl64.Vec3
	}{
		{"north pole", 90, 0, mgl64.Vec3{0, 1, 0}},
		{"south pole", -90, 0, mgl64.Vec3{0, -1, 0}},
		{"prime meridian", 0, 0, mgl64.Vec3{1, 0, 0}},
		{"ninety east", 0, 90, mgl64.Vec3{0, 0, -1}},
		{"antimeridian", 0, 180, mgl64.Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCartesian(tt.lat, tt.lon, 1, 0)
			// Absolute tolerance: relative comparison never matches an exact 0.
			if got.Sub(tt.want).Len() > 1e-9 {
				t.Errorf("ToCartesian(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestAltitudeHeightMonotonic(t *testing.T) {
	prev := AltitudeHeight(0)
	if prev != MinHeight {
		t.Fatalf("AltitudeHeight(0) = %v, want %v", prev, MinHeight)
	}
	for alt := 100.0; alt <= 40000; alt += 100 {
		h := AltitudeHeight(alt)
		if h <= prev {
			t.Fatalf("AltitudeHeight(%v) = %v, not greater than %v", alt, h, prev)
		}
		prev = h
	}
}

func TestEastIsTangent(t *testing.T) {
	for _, u := range []mgl64.Vec3{
		ToCartesian(0, 0, 1, 0),
		ToCartesian(45, 90, 1, 0),
		ToCartesian(90, 0, 1, 0),
		ToCartesian(-35.4, 10.9, 1, 0),
	} {
		e := East(u)
		if math.Abs(e.Len()-1) > 1e-9 {
			t.Errorf("East(%v) length = %v, want 1", u, e.Len())
		}
		if d := math.Abs(e.Dot(u.Normalize())); d > 1e-9 {
			t.Errorf("East(%v) not perpendicular, dot = %v", u, d)
		}
	}
}
