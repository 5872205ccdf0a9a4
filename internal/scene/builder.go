package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/geo"
)

const (
	earthSegments = 96
	glowSegments  = 64
	bodySegments  = 16
	orbitSegments = 128

	atmosphereRadius = 1.01
	glowShellRadius  = 1.15
	starSpread       = 100.0

	bodyRadius      = 0.02
	glowRadiusScale = 1.5
	pulseRadius     = bodyRadius * 2
	pulseOpacity    = 0.5
	orbitOpacity    = 0.5
	trailOpacity    = 0.7

	// fallbackSpeed is the angular speed (rad/s) used when a record has no
	// usable velocity.
	fallbackSpeed = 0.001
)

// BuildOptions tunes scene construction.
type BuildOptions struct {
	FOV             float64
	TrailLength     int
	StarCount       int
	StarSeed        uint64
	TimeScale       float64
	InclinationTilt float64
	HighlightScale  float64

	SurfaceURL  string
	BumpURL     string
	SpecularURL string
}

// DefaultBuildOptions returns the dashboard's stock look.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		FOV:             45,
		TrailLength:     50,
		StarCount:       3000,
		StarSeed:        42,
		TimeScale:       60,
		InclinationTilt: 1,
		HighlightScale:  1.6,
	}
}

// SceneSatellite is the visual state of one catalog record.
type SceneSatellite struct {
	Record catalog.Satellite

	// Group is tagged with the record id and sits at the origin. Marker
	// moves along the orbit and carries Body, which in turn carries the
	// glow and pulse meshes.
	Group     *Node
	Marker    *Node
	Body      *Node
	GlowMesh  *Node
	Pulse     *Node
	Orbit     *Node
	TrailLine *Node
	History   *Trail

	Visual   TypeVisual
	Baseline StatusVisual

	// Orbit geometry: the satellite sits at Radius*(U cos a + V sin a).
	Radius float64
	U, V   mgl64.Vec3
	Speed  float64 // rad/s of scene time

	// GlowBase is the glow opacity the pulse animation oscillates under.
	GlowBase    float64
	Highlighted bool
}

// PositionAt returns the satellite's position t seconds after mount.
func (s *SceneSatellite) PositionAt(t float64) mgl64.Vec3 {
	a := s.Speed * t
	return s.U.Mul(math.Cos(a)).Add(s.V.Mul(math.Sin(a))).Mul(s.Radius)
}

// Scene is the fully built globe.
type Scene struct {
	Root       *Node
	Earth      *Node
	Atmosphere *Node
	Glow       *Node
	Stars      *Node
	Lights     []*Node
	Orbits     *Node // parent of every satellite group
	Camera     *Camera

	Satellites []*SceneSatellite
	Tracker    *Tracker

	opts        BuildOptions
	byID        map[string]*SceneSatellite
	highlighted string
	loaded      bool
	textured    bool
	disposed    bool
}

// Build creates the whole scene from reg. Every geometry, material and
// texture is acquired from tracker. Earth textures start loading through
// loader immediately; until the surface texture settles Loaded reports false.
func Build(reg *catalog.Registry, opts BuildOptions, tracker *Tracker, loader TextureLoader) *Scene {
	if opts.TrailLength < 1 {
		opts.TrailLength = 1
	}
	if opts.HighlightScale <= 0 {
		opts.HighlightScale = 1
	}

	s := &Scene{
		Root:    NewNode("scene"),
		Camera:  NewCamera(opts.FOV, 1),
		Tracker: tracker,
		opts:    opts,
		byID:    make(map[string]*SceneSatellite, reg.Len()),
	}

	s.buildEarth(loader)
	s.buildShells()
	s.buildStars()
	s.buildLights()

	s.Orbits = NewNode("satellites")
	s.Root.Add(s.Orbits)
	for _, rec := range reg.All() {
		sat := s.buildSatellite(rec)
		s.Satellites = append(s.Satellites, sat)
		s.byID[rec.ID] = sat
		s.Orbits.Add(sat.Group)
	}

	return s
}

// Satellite returns the scene state for id.
func (s *Scene) Satellite(id string) (*SceneSatellite, bool) {
	sat, ok := s.byID[id]
	return sat, ok
}

// Loaded reports whether the Earth surface texture has settled, either way.
func (s *Scene) Loaded() bool { return s.loaded }

// Textured reports whether the Earth surface texture loaded successfully.
func (s *Scene) Textured() bool { return s.textured }

// Options returns the options the scene was built with.
func (s *Scene) Options() BuildOptions { return s.opts }

// Dispose releases every resource in the scene tree. Safe to call twice.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.Root.Dispose()
}

// Disposed reports whether Dispose has run.
func (s *Scene) Disposed() bool { return s.disposed }

func (s *Scene) geometry(kind GeometryKind, radius float64, segments int, label string) *Geometry {
	return &Geometry{
		Kind:      kind,
		Radius:    radius,
		Segments:  segments,
		DrawCount: -1,
		res:       s.Tracker.Acquire(KindGeometry, label),
	}
}

func (s *Scene) material(m Material, label string) *Material {
	m.res = s.Tracker.Acquire(KindMaterial, label)
	return &m
}

func (s *Scene) buildEarth(loader TextureLoader) {
	mat := s.material(Material{
		Color:     earthBase,
		Specular:  accentBlue,
		Shininess: 15,
		Opacity:   1,
		BumpScale: 0.05,
	}, "earth")
	mat.Map = newTexture(s.Tracker, s.opts.SurfaceURL, "earth-surface")
	mat.BumpMap = newTexture(s.Tracker, s.opts.BumpURL, "earth-bump")
	mat.SpecularMap = newTexture(s.Tracker, s.opts.SpecularURL, "earth-specular")

	mat.Map.OnSettle = func(t *Texture) {
		s.loaded = true
		s.textured = t.Ready()
	}

	s.Earth = NewNode("earth")
	s.Earth.Mesh = &Mesh{
		Geometry: s.geometry(GeometrySphere, geo.GlobeRadius, earthSegments, "earth"),
		Material: mat,
	}
	s.Root.Add(s.Earth)

	for _, t := range mat.Textures() {
		t.Load(loader)
	}
}

func (s *Scene) buildShells() {
	s.Atmosphere = NewNode("atmosphere")
	s.Atmosphere.Mesh = &Mesh{
		Geometry: s.geometry(GeometrySphere, atmosphereRadius, earthSegments, "atmosphere"),
		Material: s.material(Material{
			Color:       accentBlue,
			Opacity:     0.15,
			Transparent: true,
			Side:        BackSide,
		}, "atmosphere"),
	}
	s.Root.Add(s.Atmosphere)

	s.Glow = NewNode("glow")
	s.Glow.Mesh = &Mesh{
		Geometry: s.geometry(GeometrySphere, glowShellRadius, glowSegments, "glow"),
		Material: s.material(Material{
			Opacity:     1,
			Transparent: true,
			Side:        BackSide,
			Blending:    AdditiveBlending,
			Glow: &GlowUniforms{
				C:          0.1,
				P:          4.5,
				GlowColor:  accentBlue,
				ViewVector: s.Camera.Position,
			},
		}, "glow"),
	}
	s.Root.Add(s.Glow)
}

func (s *Scene) buildStars() {
	rng := rand.New(rand.NewPCG(s.opts.StarSeed, s.opts.StarSeed^0x9e3779b97f4a7c15))

	g := s.geometry(GeometryPoints, 0, 0, "stars")
	g.Points = make([]mgl64.Vec3, s.opts.StarCount)
	g.Sizes = make([]float64, s.opts.StarCount)
	for i := range g.Points {
		g.Points[i] = mgl64.Vec3{
			(rng.Float64() - 0.5) * starSpread,
			(rng.Float64() - 0.5) * starSpread,
			(rng.Float64() - 0.5) * starSpread,
		}
		g.Sizes[i] = 0.05 + rng.Float64()*0.1
	}

	s.Stars = NewNode("stars")
	s.Stars.Mesh = &Mesh{
		Geometry: g,
		Material: s.material(Material{
			Color:       white,
			Opacity:     1,
			Transparent: true,
			Blending:    AdditiveBlending,
		}, "stars"),
	}
	s.Root.Add(s.Stars)
}

func (s *Scene) buildLights() {
	add := func(name, kind string, c colorful.Color, intensity, distance float64, pos mgl64.Vec3) {
		n := NewNode(name)
		n.Position = pos
		n.Light = &Light{Kind: kind, Color: c, Intensity: intensity, Distance: distance}
		s.Lights = append(s.Lights, n)
		s.Root.Add(n)
	}
	add("ambient", "ambient", ambientDim, 2, 0, mgl64.Vec3{})
	add("sun", "directional", white, 2, 0, mgl64.Vec3{5, 3, 5})
	add("rim", "point", accentBlue, 2, 10, mgl64.Vec3{-5, 3, 0})
}

func (s *Scene) buildSatellite(rec catalog.Satellite) *SceneSatellite {
	sat := &SceneSatellite{
		Record:   rec,
		Visual:   TypeStyle(rec.Type),
		Baseline: StatusStyle(rec.Status),
		History:  NewTrail(s.opts.TrailLength),
	}
	sat.GlowBase = sat.Baseline.GlowOpacity

	// Orbit plane: spanned by the initial direction and the local east
	// direction tilted about it by the (scaled) inclination.
	height := geo.AltitudeHeight(rec.Altitude)
	p0 := geo.ToCartesian(rec.Latitude, rec.Longitude, geo.GlobeRadius, height)
	sat.Radius = p0.Len()
	sat.U = p0.Normalize()
	tilt := mgl64.QuatRotate(mgl64.DegToRad(rec.Inclination)*s.opts.InclinationTilt, sat.U)
	sat.V = tilt.Rotate(geo.East(sat.U)).Normalize()
	sat.Speed = angularSpeed(rec, s.opts.TimeScale)

	id := rec.ID
	color := sat.Visual.Color

	sat.Group = NewNode("sat:" + id)
	sat.Group.Tag = id

	sat.Marker = NewNode("marker:" + id)
	sat.Marker.Position = p0
	sat.Group.Add(sat.Marker)

	sat.Body = NewNode("body:" + id)
	sat.Body.Mesh = &Mesh{
		Geometry: s.geometry(GeometrySphere, bodyRadius, bodySegments, "body:"+id),
		Material: s.material(Material{
			Color:             color,
			Emissive:          color,
			EmissiveIntensity: sat.Baseline.EmissiveIntensity,
			Shininess:         30,
			Opacity:           1,
		}, "body:"+id),
		Pickable: true,
	}
	sat.Marker.Add(sat.Body)

	sat.GlowMesh = NewNode("glow:" + id)
	sat.GlowMesh.Mesh = &Mesh{
		Geometry: s.geometry(GeometrySphere, bodyRadius*glowRadiusScale, bodySegments, "glow:"+id),
		Material: s.material(Material{
			Color:       color,
			Opacity:     sat.GlowBase,
			Transparent: true,
		}, "glow:"+id),
		Pickable: true,
	}
	sat.Body.Add(sat.GlowMesh)

	sat.Pulse = NewNode("pulse:" + id)
	sat.Pulse.Mesh = &Mesh{
		Geometry: s.geometry(GeometryRing, pulseRadius, 32, "pulse:"+id),
		Material: s.material(Material{
			Color:       color,
			Opacity:     pulseOpacity,
			Transparent: true,
			Side:        BackSide,
		}, "pulse:"+id),
	}
	sat.Body.Add(sat.Pulse)

	orbit := s.geometry(GeometryLine, sat.Radius, orbitSegments, "orbit:"+id)
	orbit.Points = make([]mgl64.Vec3, 0, orbitSegments+1)
	for i := 0; i <= orbitSegments; i++ {
		a := 2 * math.Pi * float64(i) / orbitSegments
		if i == orbitSegments {
			a = 0
		}
		orbit.Points = append(orbit.Points,
			sat.U.Mul(math.Cos(a)).Add(sat.V.Mul(math.Sin(a))).Mul(sat.Radius))
	}
	sat.Orbit = NewNode("orbit:" + id)
	sat.Orbit.Mesh = &Mesh{
		Geometry: orbit,
		Material: s.material(Material{
			Color:       color,
			Opacity:     orbitOpacity,
			Transparent: true,
		}, "orbit:"+id),
	}
	sat.Group.Add(sat.Orbit)

	trail := s.geometry(GeometryLine, 0, 0, "trail:"+id)
	trail.Points = make([]mgl64.Vec3, 0, s.opts.TrailLength)
	trail.DrawCount = 0
	sat.TrailLine = NewNode("trail:" + id)
	sat.TrailLine.Mesh = &Mesh{
		Geometry: trail,
		Material: s.material(Material{
			Color:       color,
			Opacity:     trailOpacity,
			Transparent: true,
		}, "trail:"+id),
	}
	sat.Group.Add(sat.TrailLine)

	return sat
}

// angularSpeed converts a record's ground speed into an angular speed about
// the Earth's centre, scaled by timeScale.
func angularSpeed(rec catalog.Satellite, timeScale float64) float64 {
	if timeScale <= 0 {
		timeScale = 1
	}
	if rec.Velocity <= 0 {
		return fallbackSpeed * timeScale
	}
	kmPerSec := rec.Velocity / 3600
	return kmPerSec / (geo.EarthRadiusKm + rec.Altitude) * timeScale
}
