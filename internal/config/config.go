// Package config handles loading, defaulting, and validation of the globed
// TOML configuration file. Every section maps to a typed struct so the rest
// of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Logging  LoggingConfig  `toml:"logging"  json:"logging"`
	Server   ServerConfig   `toml:"server"   json:"server"`
	Render   RenderConfig   `toml:"render"   json:"render"`
	Globe    GlobeConfig    `toml:"globe"    json:"globe"`
	Textures TexturesConfig `toml:"textures" json:"textures"`
	Catalog  CatalogConfig  `toml:"catalog"  json:"catalog"`
	Demo     DemoConfig     `toml:"demo"     json:"demo"`
	WS       WSConfig       `toml:"ws"       json:"ws"`
}

type LoggingConfig struct {
	Level  string `toml:"level"  json:"level"`
	Format string `toml:"format" json:"format"`
}

type ServerConfig struct {
	Bind        string   `toml:"bind"         json:"bind"`
	CORSOrigins []string `toml:"cors_origins" json:"cors_origins"`
}

type RenderConfig struct {
	FPS         int     `toml:"fps"          json:"fps"`
	StreamEvery int     `toml:"stream_every" json:"stream_every"`
	Width       int     `toml:"width"        json:"width"`
	Height      int     `toml:"height"       json:"height"`
	FOV         float64 `toml:"fov"          json:"fov"`
	PixelRatio  float64 `toml:"pixel_ratio"  json:"pixel_ratio"`
}

type GlobeConfig struct {
	AutoRotateStep   float64 `toml:"auto_rotate_step"   json:"auto_rotate_step"`
	ResumeDelayMS    int     `toml:"resume_delay_ms"    json:"resume_delay_ms"`
	DragSensitivity  float64 `toml:"drag_sensitivity"   json:"drag_sensitivity"`
	ClickTolerancePx float64 `toml:"click_tolerance_px" json:"click_tolerance_px"`
	TrailLength      int     `toml:"trail_length"       json:"trail_length"`
	StarCount        int     `toml:"star_count"         json:"star_count"`
	StarSeed         uint64  `toml:"star_seed"          json:"star_seed"`
	TimeScale        float64 `toml:"time_scale"         json:"time_scale"`
	InclinationTilt  float64 `toml:"inclination_tilt"   json:"inclination_tilt"`
	HighlightScale   float64 `toml:"highlight_scale"    json:"highlight_scale"`
}

type TexturesConfig struct {
	SurfaceURL   string `toml:"surface_url"   json:"surface_url"`
	BumpURL      string `toml:"bump_url"      json:"bump_url"`
	SpecularURL  string `toml:"specular_url"  json:"specular_url"`
	CacheDir     string `toml:"cache_dir"     json:"cache_dir"`
	RefreshHours int    `toml:"refresh_hours" json:"refresh_hours"`
}

type CatalogConfig struct {
	TLEPath string `toml:"tle_path" json:"tle_path"`
}

type DemoConfig struct {
	Enabled         bool `toml:"enabled"          json:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds" json:"interval_seconds"`
}

type WSConfig struct {
	PointerRate  float64 `toml:"pointer_rate"  json:"pointer_rate"`
	PointerBurst int     `toml:"pointer_burst" json:"pointer_burst"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Bind:        "0.0.0.0:8080",
			CORSOrigins: []string{"*"},
		},
		Render: RenderConfig{
			FPS:         60,
			StreamEvery: 4,
			Width:       1280,
			Height:      720,
			FOV:         45,
			PixelRatio:  1,
		},
		Globe: GlobeConfig{
			AutoRotateStep:   0.0005,
			ResumeDelayMS:    2000,
			DragSensitivity:  0.005,
			ClickTolerancePx: 4,
			TrailLength:      50,
			StarCount:        3000,
			StarSeed:         42,
			TimeScale:        60,
			InclinationTilt:  1,
			HighlightScale:   1.6,
		},
		Textures: TexturesConfig{
			SurfaceURL:   "https://threejs.org/examples/textures/planets/earth_atmos_2048.jpg",
			BumpURL:      "https://threejs.org/examples/textures/planets/earth_normal_2048.jpg",
			SpecularURL:  "https://threejs.org/examples/textures/planets/earth_specular_2048.jpg",
			CacheDir:     "/var/cache/globed/textures",
			RefreshHours: 168,
		},
		Demo: DemoConfig{
			Enabled:         false,
			IntervalSeconds: 8,
		},
		WS: WSConfig{
			PointerRate:  120,
			PointerBurst: 30,
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the constraints Load enforces.
func Validate(cfg Config) error { return validate(cfg) }

func validate(cfg Config) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", cfg.Logging.Format)
	}
	if cfg.Render.FPS < 1 || cfg.Render.FPS > 240 {
		return errors.New("render.fps must be between 1 and 240")
	}
	if cfg.Render.StreamEvery < 1 {
		return errors.New("render.stream_every must be >= 1")
	}
	if cfg.Render.Width < 0 || cfg.Render.Height < 0 {
		return errors.New("render.width and render.height must be >= 0")
	}
	if cfg.Render.FOV <= 0 || cfg.Render.FOV >= 180 {
		return errors.New("render.fov must be between 0 and 180")
	}
	if cfg.Render.PixelRatio <= 0 {
		return errors.New("render.pixel_ratio must be > 0")
	}
	if cfg.Globe.ResumeDelayMS < 0 {
		return errors.New("globe.resume_delay_ms must be >= 0")
	}
	if cfg.Globe.DragSensitivity <= 0 {
		return errors.New("globe.drag_sensitivity must be > 0")
	}
	if cfg.Globe.ClickTolerancePx < 0 {
		return errors.New("globe.click_tolerance_px must be >= 0")
	}
	if cfg.Globe.TrailLength < 1 {
		return errors.New("globe.trail_length must be >= 1")
	}
	if cfg.Globe.StarCount < 0 {
		return errors.New("globe.star_count must be >= 0")
	}
	if cfg.Globe.TimeScale <= 0 {
		return errors.New("globe.time_scale must be > 0")
	}
	if cfg.Globe.HighlightScale < 1 {
		return errors.New("globe.highlight_scale must be >= 1")
	}
	if cfg.Textures.RefreshHours < 1 {
		return errors.New("textures.refresh_hours must be >= 1")
	}
	if cfg.Demo.IntervalSeconds < 0 {
		return errors.New("demo.interval_seconds must be >= 0")
	}
	if cfg.WS.PointerRate <= 0 || cfg.WS.PointerBurst < 1 {
		return errors.New("ws.pointer_rate must be > 0 and ws.pointer_burst >= 1")
	}
	return nil
}
