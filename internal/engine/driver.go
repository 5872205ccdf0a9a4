package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/large-farva/orbital-globe/internal/scene"
)

const (
	pulseGrowth  = 1.5
	pulseOpacity = 0.5
)

// Driver advances the scene by one animation step.
type Driver struct {
	Scene    *scene.Scene
	Controls *Controls

	// AutoRotateStep is the Earth's Y rotation per tick in auto-rotate mode.
	AutoRotateStep float64
}

// Tick updates every animated part of the scene for elapsed seconds since
// mount. It does not render.
func (d *Driver) Tick(elapsed float64) {
	s := d.Scene

	if d.Controls.Mode == ModeAutoRotate {
		s.Earth.Rotation[1] += d.AutoRotateStep
	}
	SyncShells(s)

	if g := s.Glow.Mesh.Material.Glow; g != nil {
		g.ViewVector = s.Camera.Position.Sub(s.Glow.WorldPosition())
	}

	for _, sat := range s.Satellites {
		advance(sat, elapsed)
	}
}

// SyncShells copies the Earth's rotation onto the atmosphere and glow shells.
func SyncShells(s *scene.Scene) {
	s.Atmosphere.Rotation = s.Earth.Rotation
	s.Glow.Rotation = s.Earth.Rotation
}

func advance(sat *scene.SceneSatellite, elapsed float64) {
	p := sat.PositionAt(elapsed)
	sat.Marker.Position = p

	sat.History.Push(p)
	trail := sat.TrailLine.Mesh.Geometry
	trail.Points = sat.History.Points(trail.Points)
	trail.DrawCount = sat.History.Len()

	// The pulse ring expands and fades once per cycle; the glow breathes
	// just under its current base opacity.
	cycles := elapsed * sat.Baseline.PulseSpeed
	phase := cycles - math.Floor(cycles)
	sat.Pulse.Scale = 1 + phase*pulseGrowth
	sat.Pulse.Mesh.Material.Opacity = pulseOpacity * (1 - phase)

	breathe := 0.75 + 0.25*math.Sin(2*math.Pi*cycles)
	sat.GlowMesh.Mesh.Material.Opacity = mgl64.Clamp(sat.GlowBase*breathe, 0, 1)
}
