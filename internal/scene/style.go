package scene

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

// Palette colors shared across the scene.
var (
	accentBlue = mustHex("#4cc9f0")
	neutral    = mustHex("#a0aec0")
	white      = mustHex("#ffffff")
	ambientDim = mustHex("#404040")
	earthBase  = mustHex("#1d4e89")
)

// TypeVisual is the per-type look of a satellite.
type TypeVisual struct {
	Color colorful.Color
}

// StatusVisual is the per-status baseline emphasis of a satellite.
type StatusVisual struct {
	GlowOpacity       float64
	PulseSpeed        float64 // pulses per second
	EmissiveIntensity float64
}

// TypeStyle returns the visual for a mission type. Unrecognized types get
// the neutral grey.
func TypeStyle(kind string) TypeVisual {
	switch kind {
	case catalog.TypeEarthObservation:
		return TypeVisual{Color: accentBlue}
	case catalog.TypeWeather:
		return TypeVisual{Color: mustHex("#06d6a0")}
	case catalog.TypeCommunications:
		return TypeVisual{Color: mustHex("#ffd166")}
	case catalog.TypeMilitary:
		return TypeVisual{Color: mustHex("#ff6b6b")}
	case catalog.TypeScientific:
		return TypeVisual{Color: mustHex("#b388ff")}
	default:
		return TypeVisual{Color: neutral}
	}
}

// StatusStyle returns the baseline emphasis for a status. Unrecognized
// statuses get the neutral baseline.
func StatusStyle(status catalog.Status) StatusVisual {
	switch status {
	case catalog.StatusActive:
		return StatusVisual{GlowOpacity: 0.3, PulseSpeed: 1.0, EmissiveIntensity: 0.5}
	case catalog.StatusWarning:
		return StatusVisual{GlowOpacity: 0.5, PulseSpeed: 2.5, EmissiveIntensity: 0.6}
	case catalog.StatusInactive:
		return StatusVisual{GlowOpacity: 0.12, PulseSpeed: 0.3, EmissiveIntensity: 0.2}
	default:
		return StatusVisual{GlowOpacity: 0.25, PulseSpeed: 0.8, EmissiveIntensity: 0.4}
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("scene: bad palette color " + s)
	}
	return c
}
