// Package main implements the evtscope binary: a live terminal viewer
// for event-camera RAW streams (EVT2, EVT2.1, EVT3).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evtscope/evtscope/internal/app"
	"github.com/evtscope/evtscope/internal/config"
	"github.com/evtscope/evtscope/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile   string
		input        string
		format       string
		noTimeShift  bool
		noRealTime   bool
		ringCapacity int
		sensorWidth  int
		sensorHeight int
		fps          int
		headless     bool
		logLevel     string
		showVersion  bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&input, "input", "", "Input to decode: file path, device node, or s3://bucket/key")
	flag.StringVar(&format, "format", "", "Wire format: auto, EVT2, EVT2.1, EVT3")
	flag.BoolVar(&noTimeShift, "no-time-shift", false, "Keep original timestamps instead of rebasing to t=0")
	flag.BoolVar(&noRealTime, "no-real-time", false, "Decode as fast as possible instead of pacing playback")
	flag.IntVar(&ringCapacity, "ring-capacity", 0, "Display buffer capacity in events")
	flag.IntVar(&sensorWidth, "width", 0, "Sensor width in pixels (overrides the RAW header)")
	flag.IntVar(&sensorHeight, "height", 0, "Sensor height in pixels (overrides the RAW header)")
	flag.IntVar(&fps, "fps", 0, "Render frame rate")
	flag.BoolVar(&headless, "headless", false, "Decode without the terminal view")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "evtscope - terminal viewer for event-camera RAW streams\n\n")
		fmt.Fprintf(os.Stderr, "Usage: evtscope [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  evtscope --input recording.raw\n")
		fmt.Fprintf(os.Stderr, "  evtscope --input s3://captures/gen4_evt3_hand.raw --format EVT3\n")
		fmt.Fprintf(os.Stderr, "  evtscope --input recording.raw.sz --no-real-time\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EVTSCOPE_INPUT          Input path or URL\n")
		fmt.Fprintf(os.Stderr, "  EVTSCOPE_FORMAT         Wire format\n")
		fmt.Fprintf(os.Stderr, "  EVTSCOPE_RING_CAPACITY  Display buffer capacity\n")
		fmt.Fprintf(os.Stderr, "  EVTSCOPE_S3_REGION      AWS region for s3:// inputs\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("evtscope version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, input, format, noTimeShift, noRealTime,
		ringCapacity, sensorWidth, sensorHeight, fps, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(false, logging.ParseLevel(cfg.LogLevel))

	application, err := app.New(cfg, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig merges file, environment, and flag configuration; flags
// have the highest priority.
func loadConfig(configFile, input, format string, noTimeShift, noRealTime bool,
	ringCapacity, sensorWidth, sensorHeight, fps int, logLevel string) (*config.Config, error) {

	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if input != "" {
		cfg.Input = input
	}
	if format != "" {
		cfg.Format = format
	}
	if noTimeShift {
		cfg.TimeShift = false
	}
	if noRealTime {
		cfg.RealTime = false
	}
	if ringCapacity > 0 {
		cfg.RingCapacity = ringCapacity
	}
	if sensorWidth > 0 {
		cfg.Sensor.Width = uint16(sensorWidth)
	}
	if sensorHeight > 0 {
		cfg.Sensor.Height = uint16(sensorHeight)
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}
