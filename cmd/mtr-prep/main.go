// Package main provides mtr-prep, a command-line tool that replays recorded
// agent observations against a static map and writes the target-centric
// model input.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/motion-prep/internal/version"
)

// Config holds command-line configuration.
type Config struct {
	ConfigPath string
	MapPath    string
	MapID      string
	DBPath     string
	SaveMap    bool
	ExportMap  string
	FramesPath string
	Targets    []string
	PlotDir    string
	HTMLDir    string
	OutputJSON string
	Verbose    bool
	Version    bool
}

func main() {
	cfg := parseFlags()

	if cfg.Version {
		fmt.Println("mtr-prep", version.String())
		return
	}

	if cfg.MapPath == "" && cfg.MapID == "" {
		log.Fatal("a map is required: pass -map or -map-id with -db")
	}
	if cfg.MapID != "" && cfg.DBPath == "" {
		log.Fatal("-map-id requires -db")
	}
	if cfg.SaveMap && cfg.DBPath == "" {
		log.Fatal("-save-map requires -db")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("mtr-prep failed: %v", err)
	}
}

func parseFlags() Config {
	cfg := Config{}
	var targets string

	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to tuning config JSON (defaults when empty)")
	flag.StringVar(&cfg.MapPath, "map", "", "Path to static map GeoJSON")
	flag.StringVar(&cfg.MapID, "map-id", "", "Stored map id to load from -db")
	flag.StringVar(&cfg.DBPath, "db", "", "Path to SQLite database for maps and recorded frames")
	flag.BoolVar(&cfg.SaveMap, "save-map", false, "Store the map loaded from -map in -db")
	flag.StringVar(&cfg.ExportMap, "export-map", "", "Write the loaded map as GeoJSON to this path")
	flag.StringVar(&cfg.FramesPath, "frames", "", "JSON lines file of recorded frames (read from -db when empty)")
	flag.StringVar(&targets, "targets", "", "Comma-separated target uuids (all tracked agents when empty)")
	flag.StringVar(&cfg.PlotDir, "plot", "", "Directory for per-target PNG renders")
	flag.StringVar(&cfg.HTMLDir, "html", "", "Directory for per-target HTML renders")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Write the model input as JSON to this path")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&cfg.Version, "version", false, "Print version and exit")

	flag.Parse()

	if targets != "" {
		for _, t := range strings.Split(targets, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Targets = append(cfg.Targets, t)
			}
		}
	}
	return cfg
}
