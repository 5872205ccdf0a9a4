package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/engine"
)

// ---------------------------------------------------------------------------
// Core handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// If the client asks for JSON, return component-level health checks.
	if r.Header.Get("Accept") == "application/json" {
		a.handleHealthDetailed(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// handleHealthDetailed probes the engine loop and reports each component.
func (a *App) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}
	healthy := true

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	var st engine.Stats
	if err := a.loop.Do(ctx, func() { st = a.engine.Stats() }); err != nil {
		checks["engine"] = map[string]any{"ok": false, "error": err.Error()}
		healthy = false
	} else {
		checks["engine"] = map[string]any{"ok": st.Mounted && !st.TornDown, "mounted": st.Mounted, "frames": st.Frames}
		healthy = healthy && st.Mounted && !st.TornDown
	}

	checks["textures"] = map[string]any{"ok": true, "loaded": st.Loaded, "textured": st.Textured}
	checks["websocket"] = map[string]any{"ok": true, "clients": a.wsHub.Clients()}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"ok": healthy, "checks": checks})
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"name":           "orbital-globe",
		"state":          a.State(),
		"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
		"satellites":     a.reg.Len(),
		"selected":       a.selected.Load().(string),
		"clients":        a.wsHub.Clients(),
		"demo_enabled":   a.cfg.Demo.Enabled,
	}
	if a.configPath != "" {
		resp["config_path"] = a.configPath
	}

	// Disk usage for the texture cache.
	if du := diskUsage(a.cfg.Textures.CacheDir); du != nil {
		resp["texture_cache"] = du
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	})
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg)
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (a *App) handleSatellites(w http.ResponseWriter, r *http.Request) {
	sats := a.reg.All()

	// Optional ?status= filter.
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]catalog.Satellite, 0, len(sats))
		for _, s := range sats {
			if string(s.Status) == status {
				filtered = append(filtered, s)
			}
		}
		sats = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"satellites": sats})
}

func (a *App) handleSatellite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sat, ok := a.reg.Lookup(id)
	if !ok {
		jsonError(w, "no satellite with id "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sat)
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func (a *App) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	id := a.selected.Load().(string)
	resp := map[string]any{"id": id}
	if sat, ok := a.reg.Lookup(id); ok {
		resp["satellite"] = sat
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.ID == "" {
		jsonError(w, "id is required, use DELETE to clear", http.StatusBadRequest)
		return
	}
	sat, ok := a.reg.Lookup(body.ID)
	if !ok {
		jsonError(w, "no satellite with id "+body.ID, http.StatusNotFound)
		return
	}

	if _, err := a.setSelection(r.Context(), body.ID, "api"); err != nil {
		jsonError(w, "engine unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": sat.ID, "satellite": sat})
}

func (a *App) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	if _, err := a.setSelection(r.Context(), "", "api"); err != nil {
		jsonError(w, "engine unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": ""})
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	var st engine.Stats
	if err := a.loop.Do(r.Context(), func() { st = a.engine.Stats() }); err != nil {
		jsonError(w, "engine unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	width, height := a.renderer.Size()
	writeJSON(w, http.StatusOK, map[string]any{
		"engine": st,
		"renderer": map[string]any{
			"renders":      a.renderer.Renders(),
			"stream_every": a.renderer.Every,
			"pixel_ratio":  a.renderer.PixelRatio,
			"width":        width,
			"height":       height,
		},
		"loop": map[string]any{
			"interval_ms":    a.loop.Interval().Milliseconds(),
			"pending_frames": a.loop.Pending(),
		},
		"clients": a.wsHub.Clients(),
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{
		"ok":    false,
		"error": msg,
	})
}
