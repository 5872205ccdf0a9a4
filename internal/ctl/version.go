package ctl

import (
	"fmt"
	"strings"
	"time"
)

// Build-time variables set via -ldflags.
var (
	Version   = "dev"
	GoVersion = "unknown"
)

type daemonVersion struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuiltAt   string `json:"built_at"`
}

// VersionReport is the JSON shape printed by "globectl version --json".
type VersionReport struct {
	CLI struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
	} `json:"cli"`
	Daemon      *daemonVersion `json:"daemon,omitempty"`
	DaemonError string         `json:"daemon_error,omitempty"`
	Globe       *globeSummary  `json:"globe,omitempty"`
}

// globeSummary is what the running daemon is currently serving.
type globeSummary struct {
	State         string `json:"state"`
	Satellites    int    `json:"satellites"`
	Selected      string `json:"selected"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// versionReport gathers the CLI build, the daemon build from /api/version
// and, when the daemon answers, a summary of its globe from /api/status.
func versionReport(baseURL string) VersionReport {
	baseURL = strings.TrimRight(baseURL, "/")

	var r VersionReport
	r.CLI.Version = Version
	r.CLI.GoVersion = GoVersion

	var d daemonVersion
	if err := getJSON(baseURL, "/api/version", &d); err != nil {
		r.DaemonError = err.Error()
		return r
	}
	r.Daemon = &d

	var st StatusResponse
	if err := getJSON(baseURL, "/api/status", &st); err == nil {
		r.Globe = &globeSummary{
			State:         st.State,
			Satellites:    st.Satellites,
			Selected:      st.Selected,
			UptimeSeconds: st.UptimeSeconds,
		}
	}
	return r
}

// VersionInfo displays the CLI and daemon builds along with the catalog
// size and state of the globe the daemon is serving.
func VersionInfo(baseURL string, jsonOutput bool) error {
	r := versionReport(baseURL)
	if jsonOutput {
		return printJSON(r)
	}

	fmt.Println()
	fmt.Println(header("  ORBITAL GLOBE VERSION"))
	fmt.Println(rule(38))
	fmt.Printf("  %-12s %s\n", colorize(dim, "CLI:"), r.CLI.Version+" ("+r.CLI.GoVersion+")")
	if r.Daemon == nil {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), colorize(red, "unreachable: "+r.DaemonError))
		fmt.Println()
		return nil
	}
	fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), r.Daemon.Version+" ("+r.Daemon.GoVersion+")")
	fmt.Printf("  %-12s %s\n", colorize(dim, "Built:"), r.Daemon.BuiltAt)
	if g := r.Globe; g != nil {
		fmt.Printf("  %-12s %s\n", colorize(dim, "State:"), colorize(stateColor(g.State), g.State))
		fmt.Printf("  %-12s %d\n", colorize(dim, "Satellites:"), g.Satellites)
		sel := g.Selected
		if sel == "" {
			sel = "none"
		}
		fmt.Printf("  %-12s %s\n", colorize(dim, "Selected:"), sel)
		fmt.Printf("  %-12s %s\n", colorize(dim, "Uptime:"), formatDuration(time.Duration(g.UptimeSeconds)*time.Second))
	}
	fmt.Println()

	return nil
}
