package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorRecordsEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.FrameRendered(2 * time.Millisecond)
	c.FrameRendered(3 * time.Millisecond)
	c.Pick(true)
	c.Pick(false)
	c.Pick(false)
	c.Selection("click")
	c.SetResourcesLive(42)

	if got := testutil.ToFloat64(c.Frames); got != 2 {
		t.Errorf("globe_frames_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Picks.WithLabelValues("miss")); got != 2 {
		t.Errorf("globe_picks_total{miss} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Selections.WithLabelValues("click")); got != 1 {
		t.Errorf("globe_selections_total{click} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ResourcesLive); got != 42 {
		t.Errorf("globe_scene_resources_live = %v, want 42", got)
	}
	if n := histogramSampleCount(t, reg, "globe_frame_duration_seconds"); n != 2 {
		t.Errorf("frame duration samples = %d, want 2", n)
	}
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("second New on the same registry succeeded")
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.FrameRendered(time.Millisecond)
	c.Pick(true)
	c.Selection("demo")
	c.SetResourcesLive(1)
	c.ClientsChanged(1)
	c.Inbound("click")
	c.Dropped("rate_limited")

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	c.Middleware("/x", h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}

	notFound := c.Middleware("/api/satellites/{id}", http.NotFoundHandler())
	notFound.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/satellites/nope", nil))

	if got := testutil.ToFloat64(c.HTTPServed.WithLabelValues("/api/satellites/{id}", "404")); got != 1 {
		t.Fatalf("globe_http_requests_total{404} = %v, want 1", got)
	}

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "globe_http_requests_total") {
		t.Errorf("/metrics output missing request counter:\n%s", body)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		if len(mf.Metric) > 0 {
			return mf.Metric[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}
