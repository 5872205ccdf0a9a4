package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/scene"
	"github.com/large-farva/orbital-globe/internal/telemetry"
)

// fakeScheduler is a manual clock. Frames run only on tick; timers fire when
// the clock passes their deadline.
type fakeScheduler struct {
	now    time.Time
	nextID FrameID
	frames map[FrameID]func(time.Time)
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		now:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		frames: make(map[FrameID]func(time.Time)),
	}
}

func (f *fakeScheduler) RequestFrame(fn func(time.Time)) FrameID {
	f.nextID++
	f.frames[f.nextID] = fn
	return f.nextID
}

func (f *fakeScheduler) CancelFrame(id FrameID) { delete(f.frames, id) }

func (f *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// advance moves the clock and fires due timers without running frames.
func (f *fakeScheduler) advance(d time.Duration) {
	f.now = f.now.Add(d)
	for _, t := range f.timers {
		if !t.stopped && !t.fired && !t.at.After(f.now) {
			t.fired = true
			t.fn()
		}
	}
}

// tick advances the clock by d and runs one frame.
func (f *fakeScheduler) tick(d time.Duration) {
	f.advance(d)
	due := f.frames
	f.frames = make(map[FrameID]func(time.Time))
	for _, fn := range due {
		fn(f.now)
	}
}

func (f *fakeScheduler) pendingTimers() int {
	n := 0
	for _, t := range f.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type harness struct {
	eng      *Engine
	sched    *fakeScheduler
	renderer *SnapshotRenderer
	frames   []telemetry.Frame
	picked   []catalog.Satellite
}

func newHarness(t *testing.T, reg *catalog.Registry) *harness {
	t.Helper()
	h := &harness{sched: newFakeScheduler()}
	h.renderer = NewSnapshotRenderer(1, 1, func(f telemetry.Frame) { h.frames = append(h.frames, f) })

	cfg := DefaultConfig()
	cfg.Build.StarCount = 16
	cfg.Build.TrailLength = 10

	h.eng = New(Options{
		Registry:          reg,
		Config:            cfg,
		Scheduler:         h.sched,
		Renderer:          h.renderer,
		OnSatelliteSelect: func(s catalog.Satellite) { h.picked = append(h.picked, s) },
	})
	if err := h.eng.Mount(800, 600); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return h
}

// clickOn returns the surface pixel at which p appears.
func (h *harness) clickOn(p mgl64.Vec3) (float64, float64) {
	x, y := h.eng.Scene().Camera.Project(p)
	w, ht := float64(h.eng.width), float64(h.eng.height)
	return (x + 1) / 2 * w, (1 - y) / 2 * ht
}

func (h *harness) click(x, y float64) {
	h.eng.Dispatch(Event{Type: EventPointerDown, X: x, Y: y})
	h.eng.Dispatch(Event{Type: EventPointerUp, X: x, Y: y})
	h.eng.Dispatch(Event{Type: EventClick, X: x, Y: y})
}

func TestMountStartsFrameLoop(t *testing.T) {
	h := newHarness(t, catalog.Default())

	if len(h.sched.frames) != 1 {
		t.Fatalf("pending frames after mount = %d, want 1", len(h.sched.frames))
	}
	for i := 0; i < 5; i++ {
		h.sched.tick(16 * time.Millisecond)
	}
	if h.renderer.Renders() != 5 {
		t.Fatalf("renders = %d, want 5", h.renderer.Renders())
	}
	if len(h.sched.frames) != 1 {
		t.Fatalf("frame loop did not reschedule itself: %d pending", len(h.sched.frames))
	}
	if w, ht := h.renderer.Size(); w != 800 || ht != 600 {
		t.Errorf("renderer size = %dx%d, want 800x600", w, ht)
	}
	if h.eng.Events().Count() != 5 {
		t.Errorf("listeners = %d, want 5", h.eng.Events().Count())
	}
}

func TestTrailHoldsMostRecentPositions(t *testing.T) {
	h := newHarness(t, catalog.Default())

	var elapsed []float64
	for i := 0; i < 37; i++ {
		h.sched.tick(100 * time.Millisecond)
		elapsed = append(elapsed, h.eng.elapsed)
	}

	for _, sat := range h.eng.Scene().Satellites {
		if sat.History.Len() != 10 {
			t.Fatalf("%s trail length = %d, want 10", sat.Record.ID, sat.History.Len())
		}
		pts := sat.History.Points(nil)
		recent := elapsed[len(elapsed)-10:]
		for i, p := range pts {
			if want := sat.PositionAt(recent[i]); !p.ApproxEqualThreshold(want, 1e-12) {
				t.Fatalf("%s trail[%d] = %v, want %v", sat.Record.ID, i, p, want)
			}
		}
		if got := sat.TrailLine.Mesh.Geometry.DrawCount; got != 10 {
			t.Errorf("%s draw count = %d, want 10", sat.Record.ID, got)
		}
	}
}

func TestPositionsUpdateBeforeRender(t *testing.T) {
	h := newHarness(t, catalog.Default())
	h.sched.tick(time.Second)
	h.sched.tick(time.Second)

	last := h.frames[len(h.frames)-1]
	sat, _ := h.eng.Scene().Satellite(last.Satellites[0].ID)
	want := sat.PositionAt(last.Elapsed)
	got := mgl64.Vec3(last.Satellites[0].Position)
	if !got.ApproxEqualThreshold(want, 1e-12) {
		t.Fatalf("rendered position %v, want %v for elapsed %v", got, want, last.Elapsed)
	}
}

func TestAutoRotateAdvancesAndSyncsShells(t *testing.T) {
	h := newHarness(t, catalog.Default())
	s := h.eng.Scene()

	h.sched.tick(16 * time.Millisecond)
	h.sched.tick(16 * time.Millisecond)
	if math.Abs(s.Earth.Rotation.Y()-2*0.0005) > 1e-12 {
		t.Fatalf("earth rotation y = %v, want %v", s.Earth.Rotation.Y(), 2*0.0005)
	}
	if s.Atmosphere.Rotation != s.Earth.Rotation || s.Glow.Rotation != s.Earth.Rotation {
		t.Error("shells not synchronized with earth")
	}
	wantView := s.Camera.Position.Sub(s.Glow.WorldPosition())
	if got := s.Glow.Mesh.Material.Glow.ViewVector; got != wantView {
		t.Errorf("glow view vector = %v, want %v", got, wantView)
	}
}

func TestDragRotatesGlobe(t *testing.T) {
	h := newHarness(t, catalog.Default())
	s := h.eng.Scene()

	h.eng.Dispatch(Event{Type: EventPointerDown, X: 100, Y: 100})
	h.eng.Dispatch(Event{Type: EventPointerMove, X: 110, Y: 120})

	if math.Abs(s.Earth.Rotation.Y()-10*0.005) > 1e-12 || math.Abs(s.Earth.Rotation.X()-20*0.005) > 1e-12 {
		t.Fatalf("earth rotation = %v", s.Earth.Rotation)
	}
	if s.Atmosphere.Rotation != s.Earth.Rotation || s.Glow.Rotation != s.Earth.Rotation {
		t.Error("shells not synchronized after drag")
	}

	before := s.Earth.Rotation
	h.sched.tick(16 * time.Millisecond)
	if s.Earth.Rotation != before {
		t.Error("auto-rotate ran while dragging")
	}

	// Moves without a press do nothing.
	h.eng.Dispatch(Event{Type: EventPointerUp})
	h.eng.Dispatch(Event{Type: EventPointerMove, X: 500, Y: 500})
	if s.Earth.Rotation != before {
		t.Error("pointer move without drag rotated the globe")
	}
}

func TestAutoRotateResumesAfterIdleDelay(t *testing.T) {
	h := newHarness(t, catalog.Default())
	c := h.eng.Controls()

	h.eng.Dispatch(Event{Type: EventPointerDown, X: 10, Y: 10})
	if c.Mode != ModeUserControlled {
		t.Fatalf("mode after press = %v", c.Mode)
	}
	h.eng.Dispatch(Event{Type: EventPointerUp, X: 10, Y: 10})

	h.sched.advance(1900 * time.Millisecond)
	if c.Mode != ModeUserControlled {
		t.Fatal("auto-rotate resumed before the idle delay")
	}
	h.sched.advance(200 * time.Millisecond)
	if c.Mode != ModeAutoRotate {
		t.Fatal("auto-rotate did not resume after the idle delay")
	}
	if c.ResumePending() {
		t.Error("resume timer still recorded after firing")
	}
}

func TestNewDragCancelsPendingResume(t *testing.T) {
	h := newHarness(t, catalog.Default())
	c := h.eng.Controls()

	h.eng.Dispatch(Event{Type: EventPointerDown, X: 10, Y: 10})
	h.eng.Dispatch(Event{Type: EventPointerUp, X: 10, Y: 10})
	h.sched.advance(time.Second)

	h.eng.Dispatch(Event{Type: EventPointerDown, X: 20, Y: 20})
	if h.sched.pendingTimers() != 0 {
		t.Fatalf("pending timers after new drag = %d, want 0", h.sched.pendingTimers())
	}
	h.sched.advance(5 * time.Second)
	if c.Mode != ModeUserControlled {
		t.Fatal("cancelled resume still restored auto-rotate")
	}

	h.eng.Dispatch(Event{Type: EventPointerUp, X: 20, Y: 20})
	h.sched.advance(2 * time.Second)
	if c.Mode != ModeAutoRotate {
		t.Fatal("auto-rotate did not resume after the second drag")
	}
}

func TestClickPicksSatellite(t *testing.T) {
	h := newHarness(t, catalog.Default())
	sat, _ := h.eng.Scene().Satellite("sat-003")

	x, y := h.clickOn(sat.Body.WorldPosition())
	h.click(x, y)

	if len(h.picked) != 1 {
		t.Fatalf("callback fired %d times, want 1", len(h.picked))
	}
	want, _ := catalog.Default().Lookup("sat-003")
	if h.picked[0] != want {
		t.Fatalf("callback record = %+v, want %+v", h.picked[0], want)
	}
	if h.eng.Selected() != "sat-003" {
		t.Errorf("Selected() = %q", h.eng.Selected())
	}
	if e, _ := h.eng.Scene().Emphasis("sat-003"); !e.Highlighted {
		t.Error("picked satellite not highlighted")
	}
}

func TestClickMissIsNoop(t *testing.T) {
	h := newHarness(t, catalog.Default())
	h.click(2, 2)

	if len(h.picked) != 0 {
		t.Fatalf("callback fired on a miss: %+v", h.picked)
	}
	if h.eng.Selected() != "" {
		t.Errorf("Selected() = %q after miss", h.eng.Selected())
	}
}

func TestDragIsNotAClick(t *testing.T) {
	h := newHarness(t, catalog.Default())
	sat, _ := h.eng.Scene().Satellite("sat-001")
	x, y := h.clickOn(sat.Body.WorldPosition())

	h.eng.Dispatch(Event{Type: EventPointerDown, X: x - 40, Y: y})
	h.eng.Dispatch(Event{Type: EventPointerMove, X: x, Y: y})
	h.eng.Dispatch(Event{Type: EventPointerUp, X: x, Y: y})

	// Satellites do not rotate with the Earth, so the click still lands on
	// the body; only the drag distance suppresses the pick.
	h.eng.Dispatch(Event{Type: EventClick, X: x, Y: y})
	if len(h.picked) != 0 {
		t.Fatalf("drag release picked %v", h.picked)
	}
}

func TestResize(t *testing.T) {
	h := newHarness(t, catalog.Default())
	cam := h.eng.Scene().Camera

	h.eng.Dispatch(Event{Type: EventResize, Width: 0, Height: 400})
	if cam.Aspect != 800.0/600 {
		t.Fatalf("zero-area resize changed aspect to %v", cam.Aspect)
	}

	h.eng.Dispatch(Event{Type: EventResize, Width: 1200, Height: 400})
	if cam.Aspect != 3 {
		t.Fatalf("aspect = %v, want 3", cam.Aspect)
	}
	if w, ht := h.renderer.Size(); w != 1200 || ht != 400 {
		t.Fatalf("renderer size = %dx%d", w, ht)
	}
}

func TestSetSelectedID(t *testing.T) {
	h := newHarness(t, catalog.Default())

	h.eng.SetSelectedID("sat-002")
	if len(h.picked) != 0 {
		t.Fatal("external selection fired the pick callback")
	}
	if e, _ := h.eng.Scene().Emphasis("sat-002"); !e.Highlighted {
		t.Fatal("sat-002 not highlighted")
	}

	h.eng.SetSelectedID("sat-404")
	if h.eng.Selected() != "" {
		t.Fatalf("Selected() = %q after unknown id", h.eng.Selected())
	}
	if e, _ := h.eng.Scene().Emphasis("sat-002"); e.Highlighted {
		t.Fatal("unknown id left the previous highlight")
	}
}

func TestSelectionBeforeMount(t *testing.T) {
	sched := newFakeScheduler()
	eng := New(Options{Scheduler: sched, Config: DefaultConfig()})
	eng.SetSelectedID("sat-004")
	if err := eng.Mount(640, 480); err != nil {
		t.Fatal(err)
	}
	if e, _ := eng.Scene().Emphasis("sat-004"); !e.Highlighted {
		t.Fatal("selection made before mount was not applied")
	}
}

func TestTeardownReleasesEverything(t *testing.T) {
	h := newHarness(t, catalog.Default())
	h.sched.tick(16 * time.Millisecond)

	h.eng.Dispatch(Event{Type: EventPointerDown, X: 1, Y: 1})
	h.eng.Dispatch(Event{Type: EventPointerUp, X: 1, Y: 1})
	if h.sched.pendingTimers() != 1 {
		t.Fatalf("pending timers = %d, want 1", h.sched.pendingTimers())
	}

	h.eng.Teardown()
	h.eng.Teardown()

	if len(h.sched.frames) != 0 {
		t.Errorf("frames still scheduled after teardown: %d", len(h.sched.frames))
	}
	if h.eng.Events().Count() != 0 {
		t.Errorf("listeners still attached: %d", h.eng.Events().Count())
	}
	if h.sched.pendingTimers() != 0 {
		t.Errorf("resume timer still pending")
	}
	tr := h.eng.Tracker()
	if tr.Created() == 0 || tr.Created() != tr.Released() {
		t.Errorf("created %d, released %d, live %v", tr.Created(), tr.Released(), tr.Live())
	}
	if !h.renderer.Disposed() {
		t.Error("renderer not disposed")
	}

	renders := h.renderer.Renders()
	h.sched.tick(time.Second)
	if h.renderer.Renders() != renders {
		t.Error("frame rendered after teardown")
	}
	if h.eng.Dispatch(Event{Type: EventClick, X: 400, Y: 300}) {
		t.Error("event delivered after teardown")
	}
	if err := h.eng.Mount(800, 600); !errors.Is(err, ErrTornDown) {
		t.Errorf("Mount() after teardown error = %v, want ErrTornDown", err)
	}
}

func TestTwoSatelliteScenario(t *testing.T) {
	reg, err := catalog.NewRegistry([]catalog.Satellite{
		{ID: "sat-A", Name: "Alpha", Type: catalog.TypeScientific, Latitude: 0, Longitude: 0, Altitude: 700, Velocity: 27000, Status: catalog.StatusActive},
		{ID: "sat-B", Name: "Bravo", Type: catalog.TypeWeather, Latitude: 45, Longitude: 90, Altitude: 400, Velocity: 27600, Status: catalog.StatusWarning},
	})
	if err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, reg)
	s := h.eng.Scene()

	a, okA := s.Satellite("sat-A")
	b, okB := s.Satellite("sat-B")
	if !okA || !okB {
		t.Fatal("scene satellites missing")
	}
	if a.Marker.Position.ApproxEqual(b.Marker.Position) {
		t.Fatalf("satellites share a position %v", a.Marker.Position)
	}

	eb, _ := s.Emphasis("sat-B")
	ea, _ := s.Emphasis("sat-A")
	if eb.GlowOpacity != scene.StatusStyle(catalog.StatusWarning).GlowOpacity || eb.GlowOpacity <= ea.GlowOpacity {
		t.Fatalf("sat-B baseline glow = %v, sat-A = %v", eb.GlowOpacity, ea.GlowOpacity)
	}

	x, y := h.clickOn(a.Body.WorldPosition())
	h.click(x, y)

	if len(h.picked) != 1 || h.picked[0].ID != "sat-A" {
		t.Fatalf("picked = %+v, want sat-A", h.picked)
	}
	want, _ := reg.Lookup("sat-A")
	if h.picked[0] != want {
		t.Errorf("callback got %+v, want %+v", h.picked[0], want)
	}
	if after, _ := s.Emphasis("sat-B"); after != eb {
		t.Errorf("sat-B emphasis changed: %+v -> %+v", eb, after)
	}
}
