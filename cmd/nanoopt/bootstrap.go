package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

// annotationConfigOptional marks commands that still run when the
// configuration cannot be loaded, so a broken file can be repaired.
const annotationConfigOptional = "nanoopt/config-optional"

// initialize is the PersistentPreRunE hook. It creates the XDG
// directories, loads the configuration and starts logging.
func initialize(cmd *cobra.Command, args []string) error {
	if err := ensureDirectories(); err != nil {
		return err
	}

	v, cfg, err := loadConfig(cmd)
	if err != nil {
		if cmd.Annotations[annotationConfigOptional] == "" {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		printError("Failed to load configuration: %v", err)
	}
	settings, appConfig = v, cfg

	return initLogging(cfg, cmd == watchCmd)
}

// ensureDirectories creates the config, data and state directories.
func ensureDirectories() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	for _, dir := range []string{config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// initLogging starts the logging system. A nil cfg uses the logging
// defaults. The watch TUI owns the terminal, so it gets no console output.
func initLogging(cfg *config.Config, tui bool) error {
	lc := logging.DefaultConfig()
	if cfg != nil {
		var err error
		if lc, err = cfg.LoggingConfig(); err != nil {
			return err
		}
	}
	lc.ConsoleLevel = consoleLevel(verbose, quiet)
	lc.TUIMode = tui

	if err := logging.Init(lc); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// consoleLevel picks the stderr log level from the output flags.
func consoleLevel(verbose, quiet bool) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return "warn"
	}
}

func shutdownLogging() {
	_ = logging.Close()
}
