// Package config handles simulator configuration and scenario documents.
package config

import "time"

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds fixed-step simulation settings.
type SimulationConfig struct {
	TickRate int     `yaml:"tick_rate"` // Ticks per simulated second
	Gravity  float32 `yaml:"gravity"`   // Gravity magnitude along -Y
	MaxTicks int     `yaml:"max_ticks"` // 0 runs until interrupted
	Realtime bool    `yaml:"realtime"`  // Pace ticks to the wall clock
	Scenario string  `yaml:"scenario"`
	Watch    bool    `yaml:"watch"` // Reload the scenario when it changes

	ReportInterval time.Duration `yaml:"report_interval"`
}

// TickDt returns the duration of one tick in seconds.
func (s SimulationConfig) TickDt() float32 {
	if s.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float32(s.TickRate)
}

// ViewerConfig holds trajectory viewer display settings.
type ViewerConfig struct {
	Width            int  `yaml:"width"`
	Height           int  `yaml:"height"`
	Fullscreen       bool `yaml:"fullscreen"`
	VSync            bool `yaml:"vsync"`
	ShowTrajectories bool `yaml:"show_trajectories"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:       60,
			Gravity:        9.8,
			MaxTicks:       0,
			Realtime:       false,
			Scenario:       "scenario.yaml",
			Watch:          false,
			ReportInterval: 5 * time.Second,
		},
		Viewer: ViewerConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			ShowTrajectories: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
