package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: GAZEOVERLAY_POLL__INTERVAL_MS -> poll.interval_ms.
const EnvPrefix = "GAZEOVERLAY_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GAZEOVERLAY_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[LogFormat]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

var validSimulatorModes = map[SimulatorMode]bool{
	ModeCalibrated: true,
	ModeNormalized: true,
	ModeMixed:      true,
	ModeEmpty:      true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	keys := c.Storage.Keys
	if keys.BackendURL == "" || keys.Calibration == "" || keys.Enabled == "" {
		return fmt.Errorf("storage.keys: backend_url, calibration and enabled are required")
	}
	if keys.BackendURL == keys.Calibration || keys.BackendURL == keys.Enabled || keys.Calibration == keys.Enabled {
		return fmt.Errorf("storage.keys must be distinct")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Broadcast.Channel == "" {
		return fmt.Errorf("broadcast.channel is required")
	}

	if c.Poll.IntervalMS <= 0 {
		return fmt.Errorf("poll.interval_ms must be positive")
	}

	if c.Overlay.Margin < 0 {
		return fmt.Errorf("overlay.margin must be non-negative")
	}
	if c.Overlay.ActivationMarker == "" {
		return fmt.Errorf("overlay.activation_marker is required")
	}
	for _, p := range c.Overlay.TextInputKinds {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid overlay.text_input_kinds pattern %q", p)
		}
	}

	if c.Backend.TimeoutMS <= 0 {
		return fmt.Errorf("backend.timeout_ms must be positive")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Simulator.Port < 0 || c.Simulator.Port > 65535 {
		return fmt.Errorf("invalid simulator.port %d", c.Simulator.Port)
	}
	if !validSimulatorModes[c.Simulator.Mode] {
		return fmt.Errorf("invalid simulator.mode %q: must be one of calibrated, normalized, mixed, empty", c.Simulator.Mode)
	}
	if c.Simulator.Width <= 0 || c.Simulator.Height <= 0 {
		return fmt.Errorf("simulator.width and simulator.height must be positive")
	}
	if c.Simulator.PeriodMS <= 0 {
		return fmt.Errorf("simulator.period_ms must be positive")
	}
	if c.Simulator.FailEvery < 0 {
		return fmt.Errorf("simulator.fail_every must be non-negative")
	}

	if c.Surface.CellWidth <= 0 || c.Surface.CellHeight <= 0 {
		return fmt.Errorf("surface.cell_width and surface.cell_height must be positive")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	return nil
}
