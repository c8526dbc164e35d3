package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/smartpack/internal/application"
	"github.com/eugenenazirov/smartpack/internal/config"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/tui"
)

func main() {
	kingpinApp := kingpin.New("smartpack-tui", "SmartPack - terminal recycling dashboard")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	datasetSize := kingpinApp.Flag("dataset-size", "Number of packages to generate (-1 keeps configured value)").Default("-1").Int()
	catalogFile := kingpinApp.Flag("catalog", "Path to YAML catalog file").String()
	seed := kingpinApp.Flag("seed", "Seed for a reproducible dataset (0 picks one at random)").Uint64()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{ConfigFile: *configFile}
	if *datasetSize >= 0 {
		overrides.DatasetSize = datasetSize
	}
	if *catalogFile != "" {
		overrides.CatalogFile = catalogFile
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cat, err := application.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	// The terminal is owned by the UI, so the store logs nowhere.
	store := application.NewSessionStore(cfg, cat, engine.New(cat), zap.NewNop())

	var sessionSeed *uint64
	if *seed != 0 {
		sessionSeed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, store, cat, cfg.DatasetSize, sessionSeed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
