package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Satellites    int    `json:"satellites"`
	Selected      string `json:"selected"`
	Clients       int    `json:"clients"`
	DemoEnabled   bool   `json:"demo_enabled"`
	ConfigPath    string `json:"config_path,omitempty"`
	TextureCache  *struct {
		Path           string `json:"path"`
		TotalBytes     int64  `json:"total_bytes"`
		UsedBytes      int64  `json:"used_bytes"`
		AvailableBytes int64  `json:"available_bytes"`
	} `json:"texture_cache,omitempty"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)
	stateStr := colorize(stateColor(s.State), s.State)
	selected := s.Selected
	if selected == "" {
		selected = colorize(dim, "none")
	}
	mode := "interactive"
	if s.DemoEnabled {
		mode = "demo (cycling selection)"
	}

	fmt.Println()
	fmt.Println(header("  ORBITAL GLOBE STATUS"))
	fmt.Println(rule(38))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), s.Name)
	fmt.Printf("  %-12s %s\n", colorize(dim, "State:"), stateStr)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Mode:"), mode)
	fmt.Printf("  %-12s %d\n", colorize(dim, "Satellites:"), s.Satellites)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Selected:"), selected)
	fmt.Printf("  %-12s %d\n", colorize(dim, "Clients:"), s.Clients)
	if s.ConfigPath != "" {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Config:"), s.ConfigPath)
	}
	if tc := s.TextureCache; tc != nil && tc.TotalBytes > 0 {
		pct := int(tc.UsedBytes * 100 / tc.TotalBytes)
		fmt.Printf("  %-12s [%s] %d%%  %s free\n", colorize(dim, "Cache disk:"),
			progressBar(pct, 20), pct, formatBytes(tc.AvailableBytes))
	}
	fmt.Printf("  %-12s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Println()

	return nil
}
