package ctl

import (
	"fmt"
	"strings"
	"time"

	"github.com/large-farva/orbital-globe/internal/engine"
)

// StatsResponse mirrors the JSON returned by GET /api/stats.
type StatsResponse struct {
	Engine   engine.Stats `json:"engine"`
	Renderer struct {
		Renders     uint64  `json:"renders"`
		StreamEvery int     `json:"stream_every"`
		PixelRatio  float64 `json:"pixel_ratio"`
		Width       int     `json:"width"`
		Height      int     `json:"height"`
	} `json:"renderer"`
	Loop struct {
		IntervalMS    int64 `json:"interval_ms"`
		PendingFrames int   `json:"pending_frames"`
	} `json:"loop"`
	Clients int `json:"clients"`
}

// Stats shows engine and renderer counters from the daemon.
func Stats(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp StatsResponse
	if err := getJSON(baseURL, "/api/stats", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	e := resp.Engine
	textures := "ready"
	switch {
	case !e.Loaded:
		textures = "loading"
	case !e.Textured:
		textures = colorize(yellow, "unavailable (plain globe)")
	}
	selected := e.Selected
	if selected == "" {
		selected = "none"
	}

	fmt.Println()
	fmt.Println(header("  ENGINE STATISTICS"))
	fmt.Println(rule(42))
	fmt.Printf("  Elapsed:         %s\n", formatDuration(time.Duration(e.ElapsedSeconds*float64(time.Second))))
	fmt.Printf("  Frames:          %d\n", e.Frames)
	fmt.Printf("  Mode:            %s\n", e.Mode)
	fmt.Printf("  Selected:        %s\n", selected)
	fmt.Printf("  Textures:        %s\n", textures)
	fmt.Printf("  Surface:         %dx%d @%.1fx\n", resp.Renderer.Width, resp.Renderer.Height, resp.Renderer.PixelRatio)
	fmt.Printf("  Renders:         %d (streaming every %d)\n", resp.Renderer.Renders, resp.Renderer.StreamEvery)
	fmt.Printf("  Frame interval:  %d ms\n", resp.Loop.IntervalMS)
	fmt.Printf("  Clients:         %d\n", resp.Clients)

	fmt.Println()
	fmt.Println(header("  SCENE RESOURCES"))
	t := newTable("  ", "Satellites", "Listeners", "Created", "Released", "Live")
	t.row(
		fmt.Sprintf("%d", e.Satellites),
		fmt.Sprintf("%d", e.Listeners),
		fmt.Sprintf("%d", e.ResourcesCreated),
		fmt.Sprintf("%d", e.ResourcesReleased),
		fmt.Sprintf("%d", e.ResourcesCreated-e.ResourcesReleased),
	)
	t.flush()

	fmt.Println()
	return nil
}
