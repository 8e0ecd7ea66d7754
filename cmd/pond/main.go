// Command pond runs a single simulation and writes its per-tick history as
// CSV.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/pthm-cable/pond/config"
	"github.com/pthm-cable/pond/sim"
	"github.com/pthm-cable/pond/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	seed := flag.Uint64("seed", 42, "Random seed")
	ticks := flag.Int("ticks", 0, "Override run.ticks (0 = use config)")
	predDensity := flag.Float64("pred", -1, "Override predation.density (negative = use config)")
	outputDir := flag.String("output", "out", "Output directory")
	quiet := flag.Bool("quiet", false, "Suppress progress logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *ticks > 0 {
		cfg.Run.Ticks = *ticks
	}
	if *predDensity >= 0 {
		cfg.Predation.Density = *predDensity
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.Default()
	if *quiet {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	s, err := sim.New(cfg, nil, *seed, logger)
	if err != nil {
		log.Fatalf("failed to create simulation: %v", err)
	}
	defer s.Close()

	history := s.Run()

	if !*quiet {
		logger.Info("run complete",
			"ticks", cfg.Run.Ticks,
			"final_hosts", history.FinalHosts(),
			"total_cercariae", history.TotalCercariae())
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	if om == nil {
		return
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		log.Fatalf("failed to write config: %v", err)
	}
	if err := om.WriteHistory(history); err != nil {
		log.Fatalf("failed to write history: %v", err)
	}
}
