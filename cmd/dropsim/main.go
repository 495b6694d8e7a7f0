// Command dropsim runs a scenario headless at a fixed tick.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/drops/internal/config"
	"github.com/Faultbox/drops/internal/logger"
	"github.com/Faultbox/drops/internal/sim"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if p := config.SaveConfigPath(); p != "" {
		if err := cfg.SaveTo(p); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("config written to %s\n", p)
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	opts := sim.Options{
		TickDt:  cfg.Simulation.TickDt(),
		Gravity: cfg.Simulation.Gravity,
		Logger:  logger.Named("sim"),
	}
	path := cfg.Simulation.Scenario

	world, scenario, err := loadWorld(path, opts)
	if err != nil {
		return err
	}
	logger.Info("scenario loaded",
		zap.String("scenario", scenario.Name),
		zap.String("path", path),
		zap.Int("tick_rate", cfg.Simulation.TickRate),
		zap.Int("max_ticks", cfg.Simulation.MaxTicks),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reload := make(chan *sim.World, 1)
	r := &runner{
		log:      logger.Named("dropsim"),
		world:    world,
		maxTicks: cfg.Simulation.MaxTicks,
		realtime: cfg.Simulation.Realtime,
		report:   cfg.Simulation.ReportInterval,
		reload:   reload,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the watcher has nothing left to feed once the loop is done
		defer cancel()
		return r.run(gctx)
	})
	if cfg.Simulation.Watch {
		files := append([]string{path}, scenario.ScriptFiles(path)...)
		g.Go(func() error {
			return watchScenario(gctx, path, files, opts, reload, logger.Named("watch"))
		})
	}
	return g.Wait()
}

func loadWorld(path string, opts sim.Options) (*sim.World, *config.Scenario, error) {
	s, err := config.LoadScenario(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading scenario: %w", err)
	}
	w, err := sim.Build(s, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("building world: %w", err)
	}
	return w, s, nil
}
