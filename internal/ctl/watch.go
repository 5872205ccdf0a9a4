package ctl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Filter []string // event types to show (empty = all but frames)
	JSON   bool     // output raw JSON per event
	Frames bool     // include frame events when no filter is set
}

// Watch connects to the daemon's WebSocket endpoint and streams events to
// the terminal in a human-readable format until interrupted.
func Watch(baseURL string, opts WatchOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !opts.JSON {
		fmt.Println()
		fmt.Printf("  %s %s\n", colorize(green, "connected"), colorize(dim, u.String()))
		if len(opts.Filter) > 0 {
			fmt.Printf("  %s %s\n", colorize(dim, "filter:"), colorize(dim, strings.Join(opts.Filter, ", ")))
		}
		fmt.Println(rule(50))
		fmt.Println()
	}

	// Build a filter set for O(1) lookup.
	filterSet := make(map[string]bool, len(opts.Filter))
	for _, f := range opts.Filter {
		filterSet[f] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if !wanted(msg, filterSet, opts.Frames) {
				continue
			}

			if opts.JSON {
				fmt.Println(string(msg))
			} else {
				renderEvent(msg)
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		if !opts.JSON {
			fmt.Println()
			fmt.Println(colorize(dim, "  disconnecting..."))
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(1*time.Second),
		)
		return nil
	case <-done:
		return nil
	}
}

// renderEvent parses a JSON event and prints it in a human-friendly format.
// Falls back to raw JSON for unrecognized event types.
func renderEvent(raw []byte) {
	var ev map[string]any
	if err := json.Unmarshal(raw, &ev); err != nil {
		fmt.Printf("  %s\n", string(raw))
		return
	}

	evType, _ := ev["type"].(string)
	ts := formatEventTime(ev)

	switch evType {
	case "heartbeat":
		// Heartbeats are noisy, show them dimmed on a single line.
		state, _ := ev["state"].(string)
		uptime, _ := ev["uptime_seconds"].(float64)
		clients, _ := ev["clients"].(float64)
		uptimeStr := formatDuration(time.Duration(uptime) * time.Second)
		fmt.Printf("  %s %s  %s  up %s  %s\n",
			colorize(dim, ts),
			colorize(dim, "heartbeat"),
			colorize(stateColor(state), state),
			colorize(dim, uptimeStr),
			colorize(dim, fmt.Sprintf("%d clients", int(clients))),
		)

	case "state":
		from, _ := ev["from"].(string)
		to, _ := ev["to"].(string)
		fmt.Printf("  %s %s  %s %s %s\n",
			colorize(dim, ts),
			colorize(bold, "STATE"),
			colorize(stateColor(from), from),
			colorize(dim, "->"),
			colorize(stateColor(to), to),
		)

	case "log":
		level, _ := ev["level"].(string)
		message, _ := ev["message"].(string)
		component, _ := ev["component"].(string)
		levelStr := formatLogLevel(level)
		src := ""
		if component != "" {
			src = colorize(dim, "["+component+"] ")
		}
		fmt.Printf("  %s %s  %s%s\n", colorize(dim, ts), levelStr, src, message)

	case "frame":
		// Frames stream many times a second; one dim line each.
		seq, _ := ev["seq"].(float64)
		mode, _ := ev["mode"].(string)
		selected, _ := ev["selected"].(string)
		sats, _ := ev["satellites"].([]any)
		loaded, _ := ev["loaded"].(bool)
		line := fmt.Sprintf("#%-6.0f %-16s sats=%d", seq, mode, len(sats))
		if !loaded {
			line += " loading"
		}
		if selected != "" {
			line += " selected=" + selected
		}
		fmt.Printf("  %s %s  %s\n", colorize(dim, ts), colorize(dim, "frame"), colorize(dim, line))

	case "satellite_selected":
		sat, _ := ev["satellite"].(map[string]any)
		id, _ := sat["id"].(string)
		name, _ := sat["name"].(string)
		status, _ := sat["status"].(string)
		kind, _ := sat["type"].(string)
		alt, _ := sat["altitude"].(float64)

		fmt.Println()
		fmt.Printf("  %s %s\n", colorize(dim, ts), header("SATELLITE PICKED"))
		fmt.Printf("    %-12s %s\n", colorize(dim, "Satellite:"), colorize(bold, name+" ("+id+")"))
		fmt.Printf("    %-12s %s\n", colorize(dim, "Type:"), kind)
		fmt.Printf("    %-12s %s\n", colorize(dim, "Status:"), colorize(statusColor(status), status))
		fmt.Printf("    %-12s %.0f km\n", colorize(dim, "Altitude:"), alt)
		if mission, _ := sat["mission"].(string); mission != "" {
			fmt.Printf("    %-12s %s\n", colorize(dim, "Mission:"), mission)
		}
		fmt.Println()

	case "selection":
		id, _ := ev["id"].(string)
		source, _ := ev["source"].(string)
		if id == "" {
			id = colorize(dim, "cleared")
		} else {
			id = colorize(cyan, id)
		}
		fmt.Printf("  %s %s  %s %s\n",
			colorize(dim, ts),
			colorize(bold, "SELECT"),
			id,
			colorize(dim, "via "+source),
		)

	default:
		// Unknown event type: dump as indented JSON so nothing is lost.
		pretty, err := json.MarshalIndent(ev, "  ", "  ")
		if err != nil {
			fmt.Printf("  %s\n", string(raw))
			return
		}
		fmt.Printf("  %s\n", string(pretty))
	}
}

// wanted applies the type filter. Without a filter every event but frames
// passes, unless frames were asked for.
func wanted(msg []byte, filterSet map[string]bool, frames bool) bool {
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		return true
	}
	if len(filterSet) > 0 {
		return filterSet[ev.Type]
	}
	return frames || ev.Type != "frame"
}

// formatEventTime extracts and shortens the timestamp from an event.
func formatEventTime(ev map[string]any) string {
	tsRaw, ok := ev["ts"].(string)
	if !ok {
		return "          "
	}
	t, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return padRight(tsRaw, 8)[:8]
	}
	return t.Local().Format("15:04:05")
}

// formatLogLevel returns a colored, fixed-width log level label.
func formatLogLevel(level string) string {
	switch level {
	case "info":
		return colorize(green, "INFO ")
	case "warn":
		return colorize(yellow, "WARN ")
	case "error":
		return colorize(red, "ERROR")
	default:
		return padRight(level, 5)
	}
}
