// Package config loads viewport configuration from YAML with defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dstanley/viewport/internal/device"
)

// Config represents viewport configuration options
type Config struct {
	// BridgeURL is the base URL of the browser bridge HTTP API
	BridgeURL string `yaml:"bridge_url"`

	// BridgeCommand, when set, is a shell-style command line that starts
	// the browser bridge before a run and stops it afterwards
	BridgeCommand string `yaml:"bridge_command"`

	// Headless controls whether the browser runs without a visible window
	Headless bool `yaml:"headless"`

	// ProfileDir is the directory browser profiles are stored under
	ProfileDir string `yaml:"profile_dir"`

	// Profile is the name of the browser profile used for runs
	Profile string `yaml:"profile"`

	// OutputDir is the directory run outputs are written under
	OutputDir string `yaml:"output_dir"`

	// AgentBinary is the evaluation agent CLI binary name or path
	AgentBinary string `yaml:"agent_binary"`

	// NavTimeout is the maximum time to wait for page navigation
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// SettleWait is the pause after navigation before screenshotting
	SettleWait time.Duration `yaml:"settle_wait"`

	// Accessibility enables the heuristic accessibility pass
	Accessibility bool `yaml:"accessibility"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Devices overrides the built-in device profile table
	Devices []device.Profile `yaml:"devices"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		BridgeURL:     "http://127.0.0.1:9867",
		Headless:      true,
		ProfileDir:    ".viewport/profiles",
		Profile:       "default",
		OutputDir:     "viewport-reports",
		AgentBinary:   "claude",
		NavTimeout:    30 * time.Second,
		SettleWait:    2 * time.Second,
		Accessibility: true,
		LogLevel:      "info",
		Devices:       device.DefaultProfiles(),
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use a temporary struct to handle duration parsing and to tell
	// absent booleans apart from explicit false
	type yamlConfig struct {
		BridgeURL     string           `yaml:"bridge_url"`
		BridgeCommand string           `yaml:"bridge_command"`
		Headless      *bool            `yaml:"headless"`
		ProfileDir    string           `yaml:"profile_dir"`
		Profile       string           `yaml:"profile"`
		OutputDir     string           `yaml:"output_dir"`
		AgentBinary   string           `yaml:"agent_binary"`
		NavTimeout    string           `yaml:"nav_timeout"`
		SettleWait    string           `yaml:"settle_wait"`
		Accessibility *bool            `yaml:"accessibility"`
		LogLevel      string           `yaml:"log_level"`
		Devices       []device.Profile `yaml:"devices"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.BridgeURL != "" {
		cfg.BridgeURL = yamlCfg.BridgeURL
	}
	if yamlCfg.BridgeCommand != "" {
		cfg.BridgeCommand = yamlCfg.BridgeCommand
	}
	if yamlCfg.Headless != nil {
		cfg.Headless = *yamlCfg.Headless
	}
	if yamlCfg.ProfileDir != "" {
		cfg.ProfileDir = yamlCfg.ProfileDir
	}
	if yamlCfg.Profile != "" {
		cfg.Profile = yamlCfg.Profile
	}
	if yamlCfg.OutputDir != "" {
		cfg.OutputDir = yamlCfg.OutputDir
	}
	if yamlCfg.AgentBinary != "" {
		cfg.AgentBinary = yamlCfg.AgentBinary
	}
	if yamlCfg.NavTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.NavTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid nav_timeout format %q: %w", yamlCfg.NavTimeout, err)
		}
		cfg.NavTimeout = timeout
	}
	if yamlCfg.SettleWait != "" {
		wait, err := time.ParseDuration(yamlCfg.SettleWait)
		if err != nil {
			return nil, fmt.Errorf("invalid settle_wait format %q: %w", yamlCfg.SettleWait, err)
		}
		cfg.SettleWait = wait
	}
	if yamlCfg.Accessibility != nil {
		cfg.Accessibility = *yamlCfg.Accessibility
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if len(yamlCfg.Devices) > 0 {
		if err := validateDevices(yamlCfg.Devices); err != nil {
			return nil, err
		}
		cfg.Devices = yamlCfg.Devices
	}

	return cfg, nil
}

// validateDevices rejects device tables a run could not execute.
func validateDevices(devices []device.Profile) error {
	seen := make(map[string]bool, len(devices))
	for i, d := range devices {
		if d.Name == "" {
			return fmt.Errorf("devices[%d]: name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("devices[%d]: duplicate device name %q", i, d.Name)
		}
		seen[d.Name] = true
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("device %q: width and height must be positive", d.Name)
		}
	}
	return nil
}
