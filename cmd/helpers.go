package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/weizlogy/desktop-grouping/internal/config"
	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/logging"
	"github.com/weizlogy/desktop-grouping/internal/store"
)

// env is everything a command needs: settings, a logger at the configured
// level, and the store gateway over the data directory.
type env struct {
	cfg     config.Config
	log     *logging.Logger
	gateway *store.Gateway
}

// setup loads the settings file and opens the gateway. A broken settings
// file is logged and replaced by defaults rather than aborting the command.
func setup() (*env, error) {
	// Read the root persistent flags directly to avoid conflicts with
	// subcommand local flags.
	dir, _ := rootCmd.PersistentFlags().GetString("config-dir")
	if dir == "" {
		dir = config.DefaultDir()
	}
	cfg, cfgErr := config.Load(dir)

	level := cfg.App.LogLevel
	if flag, _ := rootCmd.PersistentFlags().GetString("log-level"); flag != "" {
		level = flag
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if cfgErr != nil {
		log.Warn("settings file unusable, continuing with defaults", zap.Error(cfgErr))
	}

	gw, err := store.NewGateway(cfg.App.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	return &env{cfg: cfg, log: log, gateway: gw}, nil
}

// applyDefaults seeds a new group's appearance from the settings file.
// Unparsable color strings are ignored; the group keeps its built-ins.
func applyDefaults(g *group.Group, d config.Defaults, log *logging.Logger) {
	if d.BackgroundColor != "" {
		if c, err := group.ParseColor(d.BackgroundColor); err == nil {
			g.SetBackground(c)
		} else {
			log.Warn("ignoring default background color", zap.String("value", d.BackgroundColor), zap.Error(err))
		}
	}
	if d.BorderColor != "" {
		if c, err := group.ParseColor(d.BorderColor); err == nil {
			g.SetBorder(c)
		} else {
			log.Warn("ignoring default border color", zap.String("value", d.BorderColor), zap.Error(err))
		}
	}
	g.SetOpacity(d.Opacity)
}
