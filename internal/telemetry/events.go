// Package telemetry defines the typed event structs that flow over the
// WebSocket connection between globed and its clients, in both directions.
// Daemon-side housekeeping events (state, heartbeat, log) are still
// broadcast as map[string]any in a few places; these types document their
// shape.
package telemetry

import (
	"time"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat         EventType = "heartbeat"
	EventState             EventType = "state"
	EventLog               EventType = "log"
	EventFrame             EventType = "frame"
	EventSatelliteSelected EventType = "satellite_selected"
	EventSelection         EventType = "selection"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Clients       int    `json:"clients"`
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. LOADING -> RUNNING).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Vec3 is a point or direction in scene units.
type Vec3 [3]float64

// CameraFrame is the camera used for a frame.
type CameraFrame struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// LightFrame is one scene light.
type LightFrame struct {
	Kind      string  `json:"kind"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  Vec3    `json:"position"`
	Distance  float64 `json:"distance,omitempty"`
}

// SatelliteFrame is the drawable state of one satellite.
type SatelliteFrame struct {
	ID                string  `json:"id"`
	Color             string  `json:"color"`
	Position          Vec3    `json:"position"`
	Scale             float64 `json:"scale"`
	EmissiveIntensity float64 `json:"emissive_intensity"`
	GlowOpacity       float64 `json:"glow_opacity"`
	PulseScale        float64 `json:"pulse_scale"`
	PulseOpacity      float64 `json:"pulse_opacity"`
	Highlighted       bool    `json:"highlighted"`
	Trail             []Vec3  `json:"trail"`
	Orbit             []Vec3  `json:"orbit,omitempty"`
}

// Frame is one rendered snapshot of the globe.
type Frame struct {
	Event
	Seq        uint64           `json:"seq"`
	Elapsed    float64          `json:"elapsed"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	PixelRatio float64          `json:"pixel_ratio"`
	Loaded     bool             `json:"loaded"`
	Textured   bool             `json:"textured"`
	Mode       string           `json:"mode"`
	Selected   string           `json:"selected,omitempty"`
	Rotation   Vec3             `json:"earth_rotation"`
	ViewVector Vec3             `json:"view_vector"`
	Camera     CameraFrame      `json:"camera"`
	Lights     []LightFrame     `json:"lights,omitempty"`
	Satellites []SatelliteFrame `json:"satellites"`
}

// SatelliteSelected reports a satellite picked by clicking the globe.
type SatelliteSelected struct {
	Event
	Satellite catalog.Satellite `json:"satellite"`
}

// Selection reports the engine's current selection after an external
// change. ID is empty when the selection was cleared.
type Selection struct {
	Event
	ID     string `json:"id"`
	Source string `json:"source"`
}

// Input is a client-to-daemon message. Pointer messages carry X and Y,
// resize carries Width and Height, select carries ID.
type Input struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	ID     string  `json:"id"`
}
