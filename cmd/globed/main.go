// Globed is the orbital globe daemon.
//
// It loads configuration, builds the satellite catalog, starts the headless
// globe engine and serves the HTTP/WebSocket API that streams rendered
// frames to dashboards. Shutdown is handled gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/large-farva/orbital-globe/internal/app"
	"github.com/large-farva/orbital-globe/internal/catalog"
	"github.com/large-farva/orbital-globe/internal/config"
)

const defaultConfigPath = "/etc/globed/globed.toml"

func main() {
	var (
		envFile    = pflag.String("env-file", ".env", "Optional dotenv file with GLOBED_* overrides")
		configPath = pflag.StringP("config", "c", defaultConfigPath, "Path to config TOML (env GLOBED_CONFIG)")
		bind       = pflag.String("bind", "", "HTTP bind address (env GLOBED_BIND, default from config)")
		demoMode   = pflag.Bool("demo", false, "Cycle the selection through the catalog")
	)
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "globed: env file %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	if v := os.Getenv("GLOBED_CONFIG"); v != "" && !pflag.CommandLine.Changed("config") {
		*configPath = v
	}
	if v := os.Getenv("GLOBED_BIND"); v != "" && !pflag.CommandLine.Changed("bind") {
		*bind = v
	}

	cfg, err := config.Load(*configPath)
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		fmt.Fprintf(os.Stderr, "globed: config load failed: %v\n", err)
		os.Exit(1)
	}
	if *demoMode {
		cfg.Demo.Enabled = true
	}

	logger := config.NewLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)
	if missing {
		logger.Warn("config file not found, using defaults", "path", *configPath)
		*configPath = ""
	}

	reg, err := buildRegistry(cfg.Catalog)
	if err != nil {
		logger.Error("catalog load failed", "error", err)
		os.Exit(1)
	}

	a, err := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		Bind:       *bind,
		ConfigPath: *configPath,
		Registry:   reg,
	})
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("globed starting", "version", app.Version, "satellites", reg.Len(), "demo", cfg.Demo.Enabled)
	if err := a.Run(ctx); err != nil {
		logger.Error("globed failed", "error", err)
		os.Exit(1)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}

// buildRegistry returns the compiled-in catalog, extended with TLE-seeded
// records when a TLE file is configured.
func buildRegistry(cc config.CatalogConfig) (*catalog.Registry, error) {
	reg := catalog.Default()
	if cc.TLEPath == "" {
		return reg, nil
	}
	sats, err := catalog.LoadTLEFile(cc.TLEPath, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return reg.Extend(sats)
}
