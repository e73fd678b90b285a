package config

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// SimulatorMode selects which fields the gaze simulator fills in.
type SimulatorMode string

const (
	ModeCalibrated SimulatorMode = "calibrated"
	ModeNormalized SimulatorMode = "normalized"
	ModeMixed      SimulatorMode = "mixed"
	ModeEmpty      SimulatorMode = "empty"
)

// Config is the top-level gazeoverlay configuration, corresponding to .gazeoverlay.yml.
// It is read once at startup and passed by value into constructors.
type Config struct {
	Storage   StorageConfig   `yaml:"storage" koanf:"storage"`
	Broadcast BroadcastConfig `yaml:"broadcast" koanf:"broadcast"`
	Poll      PollConfig      `yaml:"poll" koanf:"poll"`
	Overlay   OverlayConfig   `yaml:"overlay" koanf:"overlay"`
	Backend   BackendConfig   `yaml:"backend" koanf:"backend"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Simulator SimulatorConfig `yaml:"simulator" koanf:"simulator"`
	Surface   SurfaceConfig   `yaml:"surface" koanf:"surface"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
}

// StorageConfig locates the persisted settings and names their keys.
type StorageConfig struct {
	DBPath string      `yaml:"db_path" koanf:"db_path"`
	Keys   StorageKeys `yaml:"keys" koanf:"keys"`
}

// StorageKeys are the three keys the external settings UI writes.
type StorageKeys struct {
	BackendURL  string `yaml:"backend_url" koanf:"backend_url"`
	Calibration string `yaml:"calibration" koanf:"calibration"`
	Enabled     string `yaml:"enabled" koanf:"enabled"`
}

// BroadcastConfig names the in-process settings-changed channel.
type BroadcastConfig struct {
	Channel string `yaml:"channel" koanf:"channel"`
}

// PollConfig controls backend sampling cadence.
type PollConfig struct {
	IntervalMS int `yaml:"interval_ms" koanf:"interval_ms"`
}

// OverlayConfig holds mapping and targeting parameters.
type OverlayConfig struct {
	Margin           float64  `yaml:"margin" koanf:"margin"`
	ActivationMarker string   `yaml:"activation_marker" koanf:"activation_marker"`
	TextInputKinds   []string `yaml:"text_input_kinds" koanf:"text_input_kinds"`
}

// BackendConfig tunes the gaze HTTP client.
type BackendConfig struct {
	TimeoutMS int `yaml:"timeout_ms" koanf:"timeout_ms"`
}

// ServerConfig controls the optional status server.
type ServerConfig struct {
	Enabled  bool `yaml:"enabled" koanf:"enabled"`
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}

// SimulatorConfig controls the synthetic gaze backend.
type SimulatorConfig struct {
	Port      int           `yaml:"port" koanf:"port"`
	Mode      SimulatorMode `yaml:"mode" koanf:"mode"`
	Width     float64       `yaml:"width" koanf:"width"`
	Height    float64       `yaml:"height" koanf:"height"`
	PeriodMS  int           `yaml:"period_ms" koanf:"period_ms"`
	FailEvery int           `yaml:"fail_every" koanf:"fail_every"`
}

// SurfaceConfig sets how many virtual pixels one terminal cell spans.
type SurfaceConfig struct {
	CellWidth  int `yaml:"cell_width" koanf:"cell_width"`
	CellHeight int `yaml:"cell_height" koanf:"cell_height"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
