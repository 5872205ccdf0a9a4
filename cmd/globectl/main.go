// Globectl is the command-line client for monitoring and steering a running
// globed instance. It connects over HTTP and WebSocket to query status,
// change the highlighted satellite and stream live events from the daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/large-farva/orbital-globe/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", envOr("GLOBED_URL", "http://127.0.0.1:8080"), "Globe daemon URL (e.g. http://192.168.8.1:8080)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter state,selection)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --status are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Query commands ────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "satellites":
		satFlags := pflag.NewFlagSet("satellites", pflag.ContinueOnError)
		status := satFlags.String("status", "", "Only show satellites with this status (active, warning, inactive)")
		_ = satFlags.Parse(subArgs)
		err = ctl.Satellites(*host, *status, *jsonOut)

	case "satellite":
		if len(subArgs) != 1 {
			fmt.Fprintln(os.Stderr, "usage: globectl satellite <id>")
			os.Exit(2)
		}
		err = ctl.Satellite(*host, subArgs[0], *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "stats":
		err = ctl.Stats(*host, *jsonOut)

	case "selection":
		err = ctl.Selection(*host, *jsonOut)

	// ── Control commands ──────────────────────────────────────────
	case "select":
		if len(subArgs) != 1 {
			fmt.Fprintln(os.Stderr, "usage: globectl select <id>")
			os.Exit(2)
		}
		err = ctl.Select(*host, subArgs[0], *jsonOut)

	case "clear":
		err = ctl.Clear(*host, *jsonOut)

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		opts := ctl.WatchOptions{Filter: *filter, JSON: *jsonOut}
		watchFlags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
		watchFlags.BoolVar(&opts.Frames, "frames", false, "Include frame events")
		_ = watchFlags.Parse(subArgs)
		err = ctl.Watch(*host, opts)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Print(`
  globectl: orbital globe control CLI

  USAGE
    globectl [flags] <command> [command-flags]

  COMMANDS (query)
    status          Show daemon state, uptime, and current selection
    health          Check daemon and component health
    version         Show CLI and daemon version information
    satellites      List the satellite catalog
    satellite ID    Show one satellite's full record
    config          Show the daemon's running configuration
    stats           Show engine, renderer and scene resource counters
    selection       Show the highlighted satellite

  COMMANDS (control)
    select ID       Highlight a satellite on every connected globe
    clear           Remove the highlight

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: $GLOBED_URL or http://127.0.0.1:8080)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    satellites:
        --status STATUS     Only show active, warning or inactive satellites

    watch:
        --frames            Include frame events (hidden by default)

  EXAMPLES
    globectl status
    globectl --json status
    globectl satellites --status warning
    globectl satellite sat-003
    globectl select sat-003
    globectl clear
    globectl --host http://192.168.8.1:8080 watch
    globectl --filter selection,satellite_selected watch

`)
}
