// Package app wires together the HTTP server, the WebSocket hub and the globe
// engine. It owns the daemon's lifecycle and is the single source of truth
// for the current operating state.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/config"
	"github.com/large-farva/orbital-globe/internal/demo"
	"github.com/large-farva/orbital-globe/internal/engine"
	"github.com/large-farva/orbital-globe/internal/metrics"
	"github.com/large-farva/orbital-globe/internal/scene"
	"github.com/large-farva/orbital-globe/internal/telemetry"
	"github.com/large-farva/orbital-globe/internal/ws"
)

// Operating states broadcast to clients.
const (
	StateBooting  = "BOOTING"
	StateLoading  = "LOADING"
	StateRunning  = "RUNNING"
	StateStopping = "STOPPING"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *slog.Logger
	Cfg        config.Config
	Bind       string
	ConfigPath string
	Registry   *catalog.Registry

	// Metrics is where the Prometheus instruments register. Nil means the
	// global registry.
	Metrics prometheus.Registerer
}

// App is the top-level daemon process. It manages the HTTP server, the
// WebSocket event hub and the engine loop.
type App struct {
	root       *slog.Logger
	log        *slog.Logger
	cfg        config.Config
	bind       string
	configPath string
	server     *http.Server

	startedAt time.Time
	state     atomic.Value // current state string (BOOTING, LOADING, etc.)
	selected  atomic.Value // mirror of the engine selection for off-loop readers

	reg      *catalog.Registry
	wsHub    *ws.Hub
	loop     *engine.Loop
	engine   *engine.Engine
	renderer *engine.SnapshotRenderer
	textures *scene.TextureStore
	metrics  *metrics.Collector

	startOnce sync.Once
	stopOnce  sync.Once
	stopLoop  context.CancelFunc
}

// New creates an App in the BOOTING state. Call Run to start serving.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := opts.Registry
	if reg == nil {
		reg = catalog.Default()
	}
	col, err := metrics.New(opts.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	cfg := opts.Cfg
	a := &App{
		root:       logger,
		log:        logger.With("component", "globed"),
		cfg:        cfg,
		bind:       opts.Bind,
		configPath: opts.ConfigPath,
		startedAt:  time.Now(),
		reg:        reg,
		metrics:    col,
	}
	a.state.Store(StateBooting)
	a.selected.Store("")

	a.wsHub = ws.NewHub(ws.Options{
		Logger:    logger,
		OnConnect: a.greet,
		OnMessage: a.handleInput,
		OnClients: col.ClientsChanged,
		Rate:      rate.Limit(cfg.WS.PointerRate),
		Burst:     cfg.WS.PointerBurst,
	})

	fps := max(cfg.Render.FPS, 1)
	a.loop = engine.NewLoop(time.Second / time.Duration(fps))
	a.renderer = engine.NewSnapshotRenderer(cfg.Render.StreamEvery, cfg.Render.PixelRatio, a.publishFrame)
	a.textures = scene.NewTextureStore(cfg.Textures.CacheDir, cfg.Textures.RefreshHours, func(fn func()) { a.loop.Post(fn) })

	a.engine = engine.New(engine.Options{
		Registry:          reg,
		Config:            engineConfig(cfg),
		Scheduler:         a.loop,
		Renderer:          a.renderer,
		Textures:          a.textures,
		Logger:            logger,
		Metrics:           col,
		OnSatelliteSelect: a.satelliteSelected,
	})
	return a, nil
}

// engineConfig maps the [render] and [globe] sections onto engine settings.
func engineConfig(cfg config.Config) engine.Config {
	g := cfg.Globe
	ec := engine.DefaultConfig()
	ec.AutoRotateStep = g.AutoRotateStep
	ec.ResumeDelay = time.Duration(g.ResumeDelayMS) * time.Millisecond
	ec.DragSensitivity = g.DragSensitivity
	ec.ClickTolerance = g.ClickTolerancePx

	b := &ec.Build
	b.FOV = cfg.Render.FOV
	b.TrailLength = g.TrailLength
	b.StarCount = g.StarCount
	b.StarSeed = g.StarSeed
	b.TimeScale = g.TimeScale
	b.InclinationTilt = g.InclinationTilt
	b.HighlightScale = g.HighlightScale
	b.SurfaceURL = cfg.Textures.SurfaceURL
	b.BumpURL = cfg.Textures.BumpURL
	b.SpecularURL = cfg.Textures.SpecularURL
	return ec
}

// Run starts the HTTP server, WebSocket hub, engine loop, heartbeat ticker
// and, when enabled, the demo selection cycler. It blocks until the context
// is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" && a.cfg.Server.Bind != "" {
		bind = a.cfg.Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	a.server = &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	a.log.Info("listening", "addr", "http://"+bind)

	a.start(ctx)

	go func() {
		<-ctx.Done()
		a.log.Info("shutdown requested")
		a.shutdown()
		_ = a.server.Shutdown(context.Background())
	}()

	if err := a.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// start launches every background goroutine and mounts the engine. It is
// safe to call more than once.
func (a *App) start(ctx context.Context) {
	a.startOnce.Do(func() {
		go a.wsHub.Run(ctx)

		// The loop outlives ctx so shutdown can still run the teardown on it.
		loopCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
		a.stopLoop = stop
		go a.loop.Run(loopCtx)

		a.transition(StateLoading)
		w, h := a.cfg.Render.Width, a.cfg.Render.Height
		a.loop.Post(func() {
			if err := a.engine.Mount(w, h); err != nil {
				a.log.Error("mount failed", "error", err)
			}
		})

		go a.heartbeatLoop(ctx)

		if a.cfg.Demo.Enabled {
			r := demo.New(a.reg, a.selectFromDemo)
			if a.cfg.Demo.IntervalSeconds > 0 {
				r.Interval = time.Duration(a.cfg.Demo.IntervalSeconds) * time.Second
			}
			r.Logger = a.root
			go r.Run(ctx)
		}
	})
}

// shutdown tears the engine down on its own goroutine, then stops the loop.
func (a *App) shutdown() {
	a.stopOnce.Do(func() {
		a.transition(StateStopping)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.loop.Do(ctx, a.engine.Teardown); err != nil {
			a.log.Warn("teardown skipped", "error", err)
		}
		if a.stopLoop != nil {
			a.stopLoop()
		}
	})
}

// Handler returns the daemon's HTTP routes wrapped in CORS handling.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	api := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, a.metrics.Middleware(route, h))
	}

	mux.HandleFunc("GET /healthz", a.handleHealthz)
	api("GET /api/status", "/api/status", a.handleStatus)
	api("GET /api/version", "/api/version", a.handleVersion)
	api("GET /api/satellites", "/api/satellites", a.handleSatellites)
	api("GET /api/satellites/{id}", "/api/satellites/{id}", a.handleSatellite)
	api("GET /api/selection", "/api/selection", a.handleGetSelection)
	api("POST /api/selection", "/api/selection", a.handleSetSelection)
	api("DELETE /api/selection", "/api/selection", a.handleClearSelection)
	api("GET /api/stats", "/api/stats", a.handleStats)
	api("GET /api/config", "/api/config", a.handleConfig)
	mux.Handle("GET /metrics", a.metrics.Handler())
	mux.Handle("/ws", a.wsHub.Handler())

	return cors.New(cors.Options{
		AllowedOrigins: a.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	}).Handler(mux)
}

// transition atomically updates the daemon state and broadcasts the change
// to all connected WebSocket clients.
func (a *App) transition(newState string) {
	old := a.state.Swap(newState).(string)
	if old == newState {
		return
	}
	a.log.Debug("state", "from", old, "to", newState)
	a.wsHub.BroadcastJSON(telemetry.StateTransition{
		Event: telemetry.Event{Type: telemetry.EventState, TS: telemetry.NowTS(), Component: "globed"},
		From:  old,
		To:    newState,
	})
}

// State returns the current operating state.
func (a *App) State() string { return a.state.Load().(string) }

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event:         telemetry.Event{Type: telemetry.EventHeartbeat, TS: telemetry.NowTS(), Component: "globed"},
				State:         a.State(),
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
				Clients:       a.wsHub.Clients(),
			})
		}
	}
}

// publishFrame runs on the engine goroutine for every streamed render.
func (a *App) publishFrame(f telemetry.Frame) {
	if f.Loaded && a.State() == StateLoading {
		a.transition(StateRunning)
		if !f.Textured {
			a.emit("engine", map[string]any{
				"type":    "log",
				"level":   "warn",
				"message": "earth textures unavailable, rendering plain globe",
			})
		}
	}
	f.Event = telemetry.Event{Type: telemetry.EventFrame, TS: telemetry.NowTS(), Component: "engine"}
	a.wsHub.BroadcastJSON(f)
}

// satelliteSelected runs on the engine goroutine after a click pick.
func (a *App) satelliteSelected(rec catalog.Satellite) {
	a.selected.Store(rec.ID)
	a.wsHub.BroadcastJSON(telemetry.SatelliteSelected{
		Event:     telemetry.Event{Type: telemetry.EventSatelliteSelected, TS: telemetry.NowTS(), Component: "engine"},
		Satellite: rec,
	})
}

// setSelection applies id on the engine goroutine and broadcasts the
// outcome. It returns the id actually highlighted, which is empty when id
// was cleared or unknown. The mirror and the broadcast are updated on the
// engine goroutine too, so they follow the engine's order of selections.
func (a *App) setSelection(ctx context.Context, id, source string) (string, error) {
	var got string
	err := a.loop.Do(ctx, func() {
		a.engine.SetSelectedID(id)
		got = a.engine.Selected()
		a.selected.Store(got)
		a.wsHub.BroadcastJSON(a.selectionEvent(got, source))
	})
	if err != nil {
		return "", err
	}
	return got, nil
}

func (a *App) selectionEvent(id, source string) telemetry.Selection {
	return telemetry.Selection{
		Event:  telemetry.Event{Type: telemetry.EventSelection, TS: telemetry.NowTS(), Component: "globed"},
		ID:     id,
		Source: source,
	}
}

func (a *App) selectFromDemo(ctx context.Context, id string) error {
	_, err := a.setSelection(ctx, id, "demo")
	return err
}

// greet brings a freshly connected client up to date.
func (a *App) greet(s *ws.Session) {
	s.SendJSON(telemetry.StateTransition{
		Event: telemetry.Event{Type: telemetry.EventState, TS: telemetry.NowTS(), Component: "globed"},
		From:  a.State(),
		To:    a.State(),
	})
	s.SendJSON(a.selectionEvent(a.selected.Load().(string), "sync"))
	if f, ok := a.renderer.Last(); ok {
		f.Event = telemetry.Event{Type: telemetry.EventFrame, TS: telemetry.NowTS(), Component: "engine"}
		s.SendJSON(f)
	}
}

// handleInput decodes one client message and forwards it to the engine.
func (a *App) handleInput(s *ws.Session, data []byte) {
	var in telemetry.Input
	if err := json.Unmarshal(data, &in); err != nil {
		a.log.Debug("malformed client message", "session", s.ID, "error", err)
		a.metrics.Dropped("malformed")
		return
	}

	switch in.Type {
	case string(engine.EventPointerMove):
		if !s.Allow() {
			a.metrics.Dropped("rate_limited")
			return
		}
		fallthrough
	case string(engine.EventPointerDown), string(engine.EventPointerUp), string(engine.EventClick), string(engine.EventResize):
		ev := engine.Event{Type: engine.EventType(in.Type), X: in.X, Y: in.Y, Width: in.Width, Height: in.Height}
		if !a.loop.Post(func() { a.engine.Dispatch(ev) }) {
			a.metrics.Dropped("stopped")
			return
		}
		a.metrics.Inbound(in.Type)
	case "select":
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := a.setSelection(ctx, in.ID, "client"); err != nil {
				a.log.Debug("client selection failed", "session", s.ID, "error", err)
			}
		}()
		a.metrics.Inbound(in.Type)
	default:
		a.log.Debug("unknown client message", "session", s.ID, "type", in.Type)
		a.metrics.Dropped("unknown")
	}
}

// emit stamps a payload with a timestamp and component name, then pushes it
// to every connected WebSocket client.
func (a *App) emit(component string, payload map[string]any) {
	payload["ts"] = telemetry.NowTS()
	payload["component"] = component
	a.wsHub.BroadcastJSON(payload)
}
