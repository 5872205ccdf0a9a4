// Package engine runs the globe: it mounts the scene, animates it once per
// frame, turns pointer input into rotation and picks, and tears everything
// down again. All engine methods must be called from the goroutine that
// runs the Scheduler's callbacks.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/scene"
)

var (
	// ErrNotMounted is returned by operations that need a mounted scene.
	ErrNotMounted = errors.New("engine not mounted")
	// ErrTornDown is returned when mounting an engine that was torn down.
	ErrTornDown = errors.New("engine torn down")
)

// Config tunes the engine's behaviour.
type Config struct {
	Build           scene.BuildOptions
	AutoRotateStep  float64
	ResumeDelay     time.Duration
	DragSensitivity float64
	ClickTolerance  float64 // pixels
}

// DefaultConfig returns the dashboard's stock behaviour.
func DefaultConfig() Config {
	return Config{
		Build:           scene.DefaultBuildOptions(),
		AutoRotateStep:  0.0005,
		ResumeDelay:     2 * time.Second,
		DragSensitivity: 0.005,
		ClickTolerance:  4,
	}
}

// Metrics receives engine instrumentation. Any method may be a no-op.
type Metrics interface {
	FrameRendered(d time.Duration)
	Pick(hit bool)
	Selection(source string)
	SetResourcesLive(n int)
}

// Options holds everything the Engine needs from the caller.
type Options struct {
	Registry  *catalog.Registry
	Config    Config
	Scheduler Scheduler
	Renderer  Renderer
	Textures  scene.TextureLoader
	Logger    *slog.Logger
	Metrics   Metrics

	// OnSatelliteSelect is called once per successful click pick with the
	// full registry record.
	OnSatelliteSelect func(catalog.Satellite)
}

// Engine is one mounted globe.
type Engine struct {
	reg      *catalog.Registry
	cfg      Config
	sched    Scheduler
	renderer Renderer
	textures scene.TextureLoader
	log      *slog.Logger
	metrics  Metrics
	onSelect func(catalog.Satellite)

	tracker  *scene.Tracker
	scene    *scene.Scene
	controls *Controls
	driver   *Driver
	events   *Events
	detach   []func()

	frameID  FrameID
	start    time.Time
	elapsed  float64
	frames   uint64
	width    int
	height   int
	selected string

	mounted  bool
	tornDown bool
}

// New creates an unmounted engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := opts.Registry
	if reg == nil {
		reg = catalog.Default()
	}
	return &Engine{
		reg:      reg,
		cfg:      opts.Config,
		sched:    opts.Scheduler,
		renderer: opts.Renderer,
		textures: opts.Textures,
		log:      logger.With("component", "engine"),
		metrics:  opts.Metrics,
		onSelect: opts.OnSatelliteSelect,
		tracker:  scene.NewTracker(),
		controls: &Controls{},
		events:   NewEvents(),
	}
}

// Mount builds the scene, sizes the surface to width x height, attaches the
// input listeners and starts the frame loop.
func (e *Engine) Mount(width, height int) error {
	if e.tornDown {
		return ErrTornDown
	}
	if e.mounted {
		e.resize(width, height)
		return nil
	}

	if e.metrics != nil {
		e.tracker.OnChange(e.metrics.SetResourcesLive)
	}
	e.scene = scene.Build(e.reg, e.cfg.Build, e.tracker, e.textures)
	e.driver = &Driver{Scene: e.scene, Controls: e.controls, AutoRotateStep: e.cfg.AutoRotateStep}

	e.detach = append(e.detach,
		e.events.Attach(EventPointerDown, e.onPointerDown),
		e.events.Attach(EventPointerMove, e.onPointerMove),
		e.events.Attach(EventPointerUp, e.onPointerUp),
		e.events.Attach(EventClick, e.onClick),
		e.events.Attach(EventResize, func(ev Event) { e.resize(ev.Width, ev.Height) }),
	)

	e.mounted = true
	e.resize(width, height)
	if e.selected != "" {
		e.scene.SetHighlighted(e.selected)
		e.selected = e.scene.Highlighted()
	}
	e.frameID = e.sched.RequestFrame(e.frame)

	e.log.Info("mounted",
		"satellites", len(e.scene.Satellites),
		"resources", e.tracker.Created(),
		"width", width, "height", height)
	return nil
}

// Dispatch delivers an input event to the attached listeners. Events that
// arrive before mount or after teardown are dropped.
func (e *Engine) Dispatch(ev Event) bool {
	return e.events.Dispatch(ev)
}

// SetSelectedID highlights the satellite with the given id without firing
// OnSatelliteSelect. An empty or unknown id clears the highlight. Before
// mount the id is remembered and applied when the scene is built.
func (e *Engine) SetSelectedID(id string) {
	if e.tornDown {
		return
	}
	if e.scene == nil {
		e.selected = id
		return
	}
	e.scene.SetHighlighted(id)
	e.selected = e.scene.Highlighted()
	if id != "" && e.selected == "" {
		e.log.Warn("selected id not in registry", "id", id)
	}
	if e.metrics != nil {
		e.metrics.Selection("external")
	}
}

// Selected returns the highlighted satellite id, or "".
func (e *Engine) Selected() string { return e.selected }

// Teardown stops the frame loop, detaches every listener, cancels the
// resume timer, disposes the renderer and releases every scene resource.
// Calling it again does nothing.
func (e *Engine) Teardown() {
	if e.tornDown {
		return
	}
	e.tornDown = true

	if e.frameID != 0 {
		e.sched.CancelFrame(e.frameID)
		e.frameID = 0
	}
	for _, d := range e.detach {
		d()
	}
	e.detach = nil
	e.controls.cancelResume()

	if e.renderer != nil {
		e.renderer.Dispose()
	}
	if e.scene != nil {
		e.scene.Dispose()
	}

	e.log.Info("torn down",
		"created", e.tracker.Created(),
		"released", e.tracker.Released(),
		"frames", e.frames)
}

// Scene returns the mounted scene, or nil before mount.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Controls returns the pointer and rotation state.
func (e *Engine) Controls() *Controls { return e.controls }

// Events returns the input listener registry.
func (e *Engine) Events() *Events { return e.events }

// Tracker returns the resource tracker for the scene.
func (e *Engine) Tracker() *scene.Tracker { return e.tracker }

// Registry returns the catalog the scene was built from.
func (e *Engine) Registry() *catalog.Registry { return e.reg }

func (e *Engine) frame(now time.Time) {
	e.frameID = 0
	if e.tornDown {
		return
	}
	if e.start.IsZero() {
		e.start = now
	}
	began := time.Now()

	e.elapsed = now.Sub(e.start).Seconds()
	e.driver.Tick(e.elapsed)
	if e.renderer != nil {
		e.renderer.Render(e.scene, FrameInfo{
			Elapsed:  e.elapsed,
			Mode:     e.controls.Mode,
			Selected: e.selected,
		})
	}
	e.frames++
	if e.metrics != nil {
		e.metrics.FrameRendered(time.Since(began))
	}

	e.frameID = e.sched.RequestFrame(e.frame)
}

func (e *Engine) onPointerDown(ev Event) {
	e.controls.Press(ev.X, ev.Y)
}

func (e *Engine) onPointerMove(ev Event) {
	dx, dy, ok := e.controls.Move(ev.X, ev.Y)
	if !ok {
		return
	}
	rot := &e.scene.Earth.Rotation
	rot[1] += dx * e.cfg.DragSensitivity
	rot[0] += dy * e.cfg.DragSensitivity
	SyncShells(e.scene)
}

func (e *Engine) onPointerUp(Event) {
	if !e.controls.Release() {
		return
	}
	e.controls.cancelResume()
	e.controls.resume = e.sched.AfterFunc(e.cfg.ResumeDelay, func() {
		e.controls.resume = nil
		if e.tornDown || e.controls.Dragging {
			return
		}
		e.controls.Mode = ModeAutoRotate
		e.log.Debug("auto-rotate resumed")
	})
}

func (e *Engine) onClick(ev Event) {
	if !e.controls.ConsumeClick(e.cfg.ClickTolerance) {
		return
	}
	if e.width <= 0 || e.height <= 0 {
		return
	}

	ndcX := ev.X/float64(e.width)*2 - 1
	ndcY := -(ev.Y/float64(e.height))*2 + 1
	ray := e.scene.Camera.RayFromNDC(ndcX, ndcY)

	id, _, ok := scene.Pick(ray, e.scene.Orbits)
	if e.metrics != nil {
		e.metrics.Pick(ok)
	}
	if !ok {
		return
	}
	rec, ok := e.reg.Lookup(id)
	if !ok {
		e.log.Warn("picked satellite missing from registry", "id", id)
		return
	}

	e.scene.SetHighlighted(id)
	e.selected = id
	if e.metrics != nil {
		e.metrics.Selection("click")
	}
	e.log.Debug("satellite picked", "id", id, "name", rec.Name)
	if e.onSelect != nil {
		e.onSelect(rec)
	}
}

func (e *Engine) resize(width, height int) {
	if e.scene == nil || !e.scene.Camera.SetAspect(width, height) {
		e.log.Debug("resize skipped", "width", width, "height", height)
		return
	}
	e.width, e.height = width, height
	if e.renderer != nil {
		e.renderer.SetSize(width, height)
	}
}

// Stats is a point-in-time view of the engine for status reporting.
type Stats struct {
	Mounted           bool    `json:"mounted"`
	TornDown          bool    `json:"torn_down"`
	Mode              string  `json:"mode"`
	Dragging          bool    `json:"dragging"`
	Selected          string  `json:"selected,omitempty"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Frames            uint64  `json:"frames"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	Loaded            bool    `json:"loaded"`
	Textured          bool    `json:"textured"`
	Satellites        int     `json:"satellites"`
	Listeners         int     `json:"listeners"`
	ResourcesCreated  int     `json:"resources_created"`
	ResourcesReleased int     `json:"resources_released"`
}

// Stats reports the engine's current state.
func (e *Engine) Stats() Stats {
	st := Stats{
		Mounted:           e.mounted,
		TornDown:          e.tornDown,
		Mode:              e.controls.Mode.String(),
		Dragging:          e.controls.Dragging,
		Selected:          e.selected,
		Width:             e.width,
		Height:            e.height,
		Frames:            e.frames,
		ElapsedSeconds:    e.elapsed,
		Listeners:         e.events.Count(),
		ResourcesCreated:  e.tracker.Created(),
		ResourcesReleased: e.tracker.Released(),
	}
	if e.scene != nil {
		st.Loaded = e.scene.Loaded()
		st.Textured = e.scene.Textured()
		st.Satellites = len(e.scene.Satellites)
	}
	return st
}
