package engine

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/large-farva/orbital-globe/internal/scene"
	"github.com/large-farva/orbital-globe/internal/telemetry"
)

// FrameInfo is per-frame engine state handed to the renderer alongside the
// scene.
type FrameInfo struct {
	Elapsed  float64
	Mode     Mode
	Selected string
}

// Renderer draws the scene to some surface.
type Renderer interface {
	SetSize(width, height int)
	Render(s *scene.Scene, info FrameInfo)
	Dispose()
}

// SnapshotRenderer turns renders into telemetry frames and hands every
// Every-th one to Publish. It is the daemon's stand-in for a GPU surface:
// the browser draws the frames it receives.
type SnapshotRenderer struct {
	Publish    func(telemetry.Frame)
	Every      int
	PixelRatio float64

	// orbitEvery thins orbit paths in published frames.
	orbitEvery int

	mu       sync.Mutex
	width    int
	height   int
	renders  uint64
	seq      uint64
	last     telemetry.Frame
	disposed bool
}

// NewSnapshotRenderer returns a renderer publishing every n-th render.
// The pixel ratio is capped at 2.
func NewSnapshotRenderer(every int, pixelRatio float64, publish func(telemetry.Frame)) *SnapshotRenderer {
	if every < 1 {
		every = 1
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return &SnapshotRenderer{
		Publish:    publish,
		Every:      every,
		PixelRatio: min(pixelRatio, 2),
		orbitEvery: 4,
	}
}

// SetSize sets the output surface size.
func (r *SnapshotRenderer) SetSize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
}

// Size returns the output surface size.
func (r *SnapshotRenderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Renders returns how many times Render has been called.
func (r *SnapshotRenderer) Renders() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// Last returns the most recently published frame.
func (r *SnapshotRenderer) Last() (telemetry.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.seq > 0
}

// Disposed reports whether Dispose has been called.
func (r *SnapshotRenderer) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

// Render snapshots s.
func (r *SnapshotRenderer) Render(s *scene.Scene, info FrameInfo) {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.renders++
	if (r.renders-1)%uint64(r.Every) != 0 {
		r.mu.Unlock()
		return
	}
	r.seq++
	f := r.snapshot(s, info)
	r.last = f
	publish := r.Publish
	r.mu.Unlock()

	if publish != nil {
		publish(f)
	}
}

// Dispose stops all further output.
func (r *SnapshotRenderer) Dispose() {
	r.mu.Lock()
	r.disposed = true
	r.mu.Unlock()
}

func (r *SnapshotRenderer) snapshot(s *scene.Scene, info FrameInfo) telemetry.Frame {
	cam := s.Camera
	f := telemetry.Frame{
		Event: telemetry.Event{
			Type:      telemetry.EventFrame,
			TS:        telemetry.NowTS(),
			Component: "engine",
		},
		Seq:        r.seq,
		Elapsed:    info.Elapsed,
		Width:      r.width,
		Height:     r.height,
		PixelRatio: r.PixelRatio,
		Loaded:     s.Loaded(),
		Textured:   s.Textured(),
		Mode:       info.Mode.String(),
		Selected:   info.Selected,
		Rotation:   vec(s.Earth.Rotation),
		Camera: telemetry.CameraFrame{
			Position: vec(cam.Position),
			Target:   vec(cam.Target),
			FOV:      cam.FOV,
			Aspect:   cam.Aspect,
			Near:     cam.Near,
			Far:      cam.Far,
		},
	}
	if g := s.Glow.Mesh.Material.Glow; g != nil {
		f.ViewVector = vec(g.ViewVector)
	}

	for _, n := range s.Lights {
		f.Lights = append(f.Lights, telemetry.LightFrame{
			Kind:      n.Light.Kind,
			Color:     n.Light.Color.Hex(),
			Intensity: n.Light.Intensity,
			Position:  vec(n.Position),
			Distance:  n.Light.Distance,
		})
	}

	f.Satellites = make([]telemetry.SatelliteFrame, 0, len(s.Satellites))
	for _, sat := range s.Satellites {
		trail := sat.TrailLine.Mesh.Geometry
		sf := telemetry.SatelliteFrame{
			ID:                sat.Record.ID,
			Color:             sat.Visual.Color.Hex(),
			Position:          vec(sat.Marker.Position),
			Scale:             sat.Body.Scale,
			EmissiveIntensity: sat.Body.Mesh.Material.EmissiveIntensity,
			GlowOpacity:       sat.GlowMesh.Mesh.Material.Opacity,
			PulseScale:        sat.Pulse.Scale,
			PulseOpacity:      sat.Pulse.Mesh.Material.Opacity,
			Highlighted:       sat.Highlighted,
			Trail:             make([]telemetry.Vec3, 0, trail.DrawCount),
		}
		for _, p := range trail.Points[:trail.DrawCount] {
			sf.Trail = append(sf.Trail, vec(p))
		}
		orbit := sat.Orbit.Mesh.Geometry.Points
		for i := 0; i < len(orbit); i += r.orbitEvery {
			sf.Orbit = append(sf.Orbit, vec(orbit[i]))
		}
		f.Satellites = append(f.Satellites, sf)
	}
	return f
}

func vec(v mgl64.Vec3) telemetry.Vec3 {
	return telemetry.Vec3{v[0], v[1], v[2]}
}
