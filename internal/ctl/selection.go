package ctl

import (
	"fmt"
	"strings"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

type selectionResponse struct {
	OK        bool               `json:"ok"`
	ID        string             `json:"id"`
	Satellite *catalog.Satellite `json:"satellite,omitempty"`
}

// Selection shows which satellite the globe currently highlights.
func Selection(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp selectionResponse
	if err := getJSON(baseURL, "/api/selection", &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Satellite == nil {
		fmt.Printf("\n  %s\n\n", colorize(dim, "no satellite selected"))
		return nil
	}
	printSatellite(*resp.Satellite)
	return nil
}

// Select highlights the satellite with the given id.
func Select(baseURL, id string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp selectionResponse
	if err := postJSON(baseURL, "/api/selection", map[string]string{"id": id}, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	name := resp.ID
	if resp.Satellite != nil {
		name = resp.Satellite.Name + " (" + resp.ID + ")"
	}
	fmt.Printf("\n  %s  %s\n\n", colorize(green, "SELECTED"), name)
	return nil
}

// Clear removes the highlight.
func Clear(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp selectionResponse
	if err := deleteJSON(baseURL, "/api/selection", &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	fmt.Printf("\n  %s  selection cleared\n\n", colorize(green, "OK"))
	return nil
}
