// Command trajview draws a scenario as wireframes and previews cannon
// trajectories while the simulation runs.
//
// Controls: left drag orbits, wheel zooms, WASD/QE pan, right click follows
// the entity under the cursor, F toggles following, Space pauses, Period
// steps one tick while paused, R rebuilds the scenario, T toggles
// trajectories, F12 saves a screenshot.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/config"
	"github.com/Faultbox/drops/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Drops trajectory viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := newViewer(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return
	}
	logger.Info("viewer closed normally")
}
