package config

import "time"

// DefaultTextInputKinds are element kinds treated as text entry, so the
// keyboard trigger never hijacks typing.
var DefaultTextInputKinds = []string{
	"input",
	"input/*",
	"textarea",
	"select",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: ".gazeoverlay/settings.db",
			Keys: StorageKeys{
				BackendURL:  "gaze.backendUrl",
				Calibration: "gaze.calibration",
				Enabled:     "gaze.enabled",
			},
		},
		Broadcast: BroadcastConfig{Channel: "gaze-settings-changed"},
		Poll:      PollConfig{IntervalMS: 140},
		Overlay: OverlayConfig{
			Margin:           12,
			ActivationMarker: "data-gaze-activatable",
			TextInputKinds:   append([]string(nil), DefaultTextInputKinds...),
		},
		Backend: BackendConfig{TimeoutMS: 2000},
		Server:  ServerConfig{Port: 7341},
		Simulator: SimulatorConfig{
			Port:     8000,
			Mode:     ModeMixed,
			Width:    1280,
			Height:   720,
			PeriodMS: 6000,
		},
		Surface: SurfaceConfig{CellWidth: 8, CellHeight: 16},
		Log:     LogConfig{Level: "info", Format: LogFormatText},
	}
}

// PollInterval returns the sampling cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// BackendTimeout returns the per-request backend timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutMS) * time.Millisecond
}

// SimulatorPeriod returns the length of one simulated gaze sweep.
func (c *Config) SimulatorPeriod() time.Duration {
	return time.Duration(c.Simulator.PeriodMS) * time.Millisecond
}
