package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dstanley/viewport/internal/browser"
	"github.com/dstanley/viewport/internal/config"
	"github.com/dstanley/viewport/internal/logger"
	"github.com/dstanley/viewport/internal/profile"
	"github.com/dstanley/viewport/internal/runner"
)

// defaultConfigPath is where configuration is looked up when --config is not given.
const defaultConfigPath = ".viewport/config.yaml"

// loadConfig reads configuration honoring the --config flag, then applies
// flag overrides shared by the capture commands.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	if explicit {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			return nil, fmt.Errorf("config file %s does not exist", configPath)
		}
	}

	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("no-accessibility") {
		cfg.Accessibility = false
	}
	return cfg, nil
}

// addSharedFlags registers the flags every capture command accepts.
func addSharedFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: "+defaultConfigPath+")")
	cmd.Flags().String("output-dir", "", "Directory run outputs are written under")
	cmd.Flags().String("log-level", "", "Logging verbosity (trace, debug, info, warn, error)")
	cmd.Flags().Bool("no-accessibility", false, "Disable the heuristic accessibility pass")
	cmd.Flags().String("task", "", "Custom evaluation task for the agent")
}

// openSession acquires the browser profile, ensures a bridge is running, and
// launches a browser session. The returned cleanup tears all of it down in
// reverse order and is safe to call exactly once.
func openSession(ctx context.Context, cfg *config.Config, log logger.Logger, headless bool) (browser.Session, func(), error) {
	manager, err := profile.NewManager(cfg.ProfileDir)
	if err != nil {
		return nil, nil, err
	}
	profileDir, release, err := manager.Acquire(cfg.Profile)
	if err != nil {
		return nil, nil, err
	}

	bridge := browser.NewBridge(cfg.BridgeURL)

	stopBridge := func() {}
	if cfg.BridgeCommand != "" {
		log.LogInfo("Starting browser bridge...")
		stopBridge, err = browser.SpawnBridge(ctx, cfg.BridgeCommand, bridge)
		if err != nil {
			release()
			return nil, nil, err
		}
	} else if err := bridge.Health(ctx); err != nil {
		release()
		return nil, nil, err
	}

	sess, err := bridge.Launch(ctx, browser.ProfileConfig{
		ProfileDir: profileDir,
		Headless:   headless,
	})
	if err != nil {
		stopBridge()
		release()
		return nil, nil, err
	}

	cleanup := func() {
		if err := sess.Close(); err != nil {
			log.LogDebug(fmt.Sprintf("session close: %v", err))
		}
		stopBridge()
		release()
	}
	return sess, cleanup, nil
}

// runOptions translates config plus the --task flag into runner options.
func runOptions(cmd *cobra.Command, cfg *config.Config) runner.Options {
	task, _ := cmd.Flags().GetString("task")
	return runner.Options{
		SettleWait:    cfg.SettleWait,
		NavTimeout:    cfg.NavTimeout,
		Accessibility: cfg.Accessibility,
		Task:          task,
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)
}
