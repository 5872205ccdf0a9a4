package ctl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

// Satellites lists the satellite catalog from the daemon, optionally only
// those with the given status.
func Satellites(baseURL, status string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	path := "/api/satellites"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Satellites []catalog.Satellite `json:"satellites"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  SATELLITE CATALOG"))

	t := newTable("  ", "ID", "Name", "Type", "Status", "Altitude", "Inclination")
	for _, s := range resp.Satellites {
		t.row(s.ID, s.Name, s.Type, string(s.Status),
			fmt.Sprintf("%.0f km", s.Altitude), fmt.Sprintf("%.1f°", s.Inclination))
	}
	t.flush()
	fmt.Println()

	return nil
}

// Satellite prints the full record for one satellite.
func Satellite(baseURL, id string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s catalog.Satellite
	if err := getJSON(baseURL, "/api/satellites/"+url.PathEscape(id), &s); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}
	printSatellite(s)
	return nil
}

func printSatellite(s catalog.Satellite) {
	fmt.Println()
	fmt.Println(header("  " + strings.ToUpper(s.Name)))
	fmt.Println(rule(38))
	fmt.Printf("  %-14s %s\n", colorize(dim, "ID:"), s.ID)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Type:"), s.Type)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Status:"), colorize(statusColor(string(s.Status)), string(s.Status)))
	fmt.Printf("  %-14s %.0f km\n", colorize(dim, "Altitude:"), s.Altitude)
	fmt.Printf("  %-14s %.0f km/h\n", colorize(dim, "Velocity:"), s.Velocity)
	fmt.Printf("  %-14s %.1f°\n", colorize(dim, "Inclination:"), s.Inclination)
	fmt.Printf("  %-14s %.1f°, %.1f°\n", colorize(dim, "Position:"), s.Latitude, s.Longitude)
	if s.Mission != "" {
		fmt.Printf("  %-14s %s\n", colorize(dim, "Mission:"), s.Mission)
	}
	if s.Owner != "" {
		fmt.Printf("  %-14s %s\n", colorize(dim, "Owner:"), s.Owner)
	}
	if s.LaunchDate != "" {
		fmt.Printf("  %-14s %s\n", colorize(dim, "Launched:"), s.LaunchDate)
	}
	fmt.Println()
}
