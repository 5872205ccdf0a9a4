// Package metrics bundles the daemon's Prometheus instruments: engine frame
// timing, picks and selections, live scene resources, WebSocket traffic and
// HTTP requests.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every instrument. A nil *Collector is valid and records
// nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Counter
	FrameDurations prometheus.Histogram
	Picks          *prometheus.CounterVec
	Selections     *prometheus.CounterVec
	ResourcesLive  prometheus.Gauge

	WSClients  prometheus.Gauge
	WSInbound  *prometheus.CounterVec
	WSDropped  *prometheus.CounterVec
	HTTPServed *prometheus.CounterVec
}

// New registers the globe metrics against reg, defaulting to the global
// Prometheus registry when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "globe_frames_total",
			Help: "Animation frames ticked and rendered.",
		}),
		FrameDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "globe_frame_duration_seconds",
			Help:    "Time spent updating and rendering one frame.",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
		Picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "globe_picks_total",
			Help: "Click picks, labeled by whether a satellite was hit.",
		}, []string{"result"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "globe_selections_total",
			Help: "Selection changes, labeled by source.",
		}, []string{"source"}),
		ResourcesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "globe_scene_resources_live",
			Help: "Scene geometries, materials and textures not yet released.",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "globe_ws_clients",
			Help: "Connected WebSocket clients.",
		}),
		WSInbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "globe_ws_inbound_total",
			Help: "Client messages accepted, labeled by message type.",
		}, []string{"type"}),
		WSDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "globe_ws_dropped_total",
			Help: "Client messages dropped, labeled by reason.",
		}, []string{"reason"}),
		HTTPServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "globe_http_requests_total",
			Help: "HTTP requests served, labeled by route and status code.",
		}, []string{"route", "code"}),
	}

	for name, col := range map[string]prometheus.Collector{
		"globe_frames_total":           c.Frames,
		"globe_frame_duration_seconds": c.FrameDurations,
		"globe_picks_total":            c.Picks,
		"globe_selections_total":       c.Selections,
		"globe_scene_resources_live":   c.ResourcesLive,
		"globe_ws_clients":             c.WSClients,
		"globe_ws_inbound_total":       c.WSInbound,
		"globe_ws_dropped_total":       c.WSDropped,
		"globe_http_requests_total":    c.HTTPServed,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// FrameRendered records one frame.
func (c *Collector) FrameRendered(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDurations.Observe(d.Seconds())
}

// Pick records a click pick.
func (c *Collector) Pick(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.Picks.WithLabelValues(result).Inc()
}

// Selection records a selection change from source.
func (c *Collector) Selection(source string) {
	if c == nil {
		return
	}
	c.Selections.WithLabelValues(source).Inc()
}

// SetResourcesLive sets the live scene resource count.
func (c *Collector) SetResourcesLive(n int) {
	if c == nil {
		return
	}
	c.ResourcesLive.Set(float64(n))
}

// ClientsChanged sets the connected WebSocket client count.
func (c *Collector) ClientsChanged(n int) {
	if c == nil {
		return
	}
	c.WSClients.Set(float64(n))
}

// Inbound records an accepted client message.
func (c *Collector) Inbound(kind string) {
	if c == nil {
		return
	}
	c.WSInbound.WithLabelValues(kind).Inc()
}

// Dropped records a rejected client message.
func (c *Collector) Dropped(reason string) {
	if c == nil {
		return
	}
	c.WSDropped.WithLabelValues(reason).Inc()
}

// Middleware counts requests served by next under route.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.HTTPServed.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
