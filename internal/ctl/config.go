package ctl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/large-farva/orbital-globe/internal/config"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	// Keep the raw document so --json shows exactly what the daemon sent.
	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	var cfg config.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(header("  DAEMON CONFIGURATION"))
	fmt.Println(rule(50))

	section := func(name string) {
		fmt.Printf("\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Printf("    %-20s %v\n", colorize(dim, key+":"), val)
	}

	section("logging")
	field("level", cfg.Logging.Level)
	field("format", cfg.Logging.Format)

	section("server")
	field("bind", cfg.Server.Bind)
	field("cors_origins", strings.Join(cfg.Server.CORSOrigins, ", "))

	section("render")
	field("fps", cfg.Render.FPS)
	field("stream_every", cfg.Render.StreamEvery)
	field("size", fmt.Sprintf("%dx%d", cfg.Render.Width, cfg.Render.Height))
	field("fov", cfg.Render.FOV)
	field("pixel_ratio", cfg.Render.PixelRatio)

	section("globe")
	field("auto_rotate_step", cfg.Globe.AutoRotateStep)
	field("resume_delay_ms", cfg.Globe.ResumeDelayMS)
	field("drag_sensitivity", cfg.Globe.DragSensitivity)
	field("click_tolerance_px", cfg.Globe.ClickTolerancePx)
	field("trail_length", cfg.Globe.TrailLength)
	field("star_count", cfg.Globe.StarCount)
	field("time_scale", cfg.Globe.TimeScale)
	field("highlight_scale", cfg.Globe.HighlightScale)

	section("textures")
	field("surface_url", cfg.Textures.SurfaceURL)
	field("cache_dir", cfg.Textures.CacheDir)
	field("refresh_hours", cfg.Textures.RefreshHours)

	section("catalog")
	field("tle_path", cfg.Catalog.TLEPath)

	section("demo")
	field("enabled", cfg.Demo.Enabled)
	field("interval_seconds", cfg.Demo.IntervalSeconds)

	section("ws")
	field("pointer_rate", cfg.WS.PointerRate)
	field("pointer_burst", cfg.WS.PointerBurst)

	fmt.Println()

	return nil
}
