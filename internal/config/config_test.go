package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Poll.IntervalMS != 140 {
		t.Errorf("expected default poll interval 140, got %d", cfg.Poll.IntervalMS)
	}
	if cfg.PollInterval() != 140*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 140ms", cfg.PollInterval())
	}
	if cfg.Overlay.Margin != 12 {
		t.Errorf("expected default margin 12, got %v", cfg.Overlay.Margin)
	}
	if cfg.Broadcast.Channel != "gaze-settings-changed" {
		t.Errorf("expected default channel, got %q", cfg.Broadcast.Channel)
	}
	if cfg.Storage.Keys.Enabled != "gaze.enabled" {
		t.Errorf("expected default enabled key, got %q", cfg.Storage.Keys.Enabled)
	}
}

func TestDefaultConfigDoesNotShareSlices(t *testing.T) {
	a := DefaultConfig()
	a.Overlay.TextInputKinds[0] = "changed"
	if DefaultTextInputKinds[0] == "changed" {
		t.Error("DefaultConfig must copy DefaultTextInputKinds")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.gazeoverlay.yml")

	original := DefaultConfig()
	original.Poll.IntervalMS = 200
	original.Overlay.Margin = 8
	original.Overlay.TextInputKinds = []string{"textarea", "input/*"}
	original.Storage.Keys.BackendURL = "tracker.url"
	original.Server.Enabled = true
	original.Log.Format = LogFormatJSON

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Poll.IntervalMS != 200 {
		t.Errorf("poll.interval_ms: got %d, want 200", loaded.Poll.IntervalMS)
	}
	if loaded.Overlay.Margin != 8 {
		t.Errorf("overlay.margin: got %v, want 8", loaded.Overlay.Margin)
	}
	if loaded.Storage.Keys.BackendURL != "tracker.url" {
		t.Errorf("storage.keys.backend_url: got %q", loaded.Storage.Keys.BackendURL)
	}
	if !loaded.Server.Enabled {
		t.Error("server.enabled: expected true")
	}
	if loaded.Log.Format != LogFormatJSON {
		t.Errorf("log.format: got %q, want json", loaded.Log.Format)
	}
	if len(loaded.Overlay.TextInputKinds) != 2 {
		t.Fatalf("text_input_kinds length: got %d, want 2", len(loaded.Overlay.TextInputKinds))
	}
	for i, v := range loaded.Overlay.TextInputKinds {
		if v != original.Overlay.TextInputKinds[i] {
			t.Errorf("text_input_kinds[%d]: got %q, want %q", i, v, original.Overlay.TextInputKinds[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Poll.IntervalMS != 140 {
		t.Errorf("expected default interval, got %d", cfg.Poll.IntervalMS)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("GAZEOVERLAY_POLL__INTERVAL_MS", "250")
	defer os.Unsetenv("GAZEOVERLAY_POLL__INTERVAL_MS")
	os.Setenv("GAZEOVERLAY_BROADCAST__CHANNEL", "other-channel")
	defer os.Unsetenv("GAZEOVERLAY_BROADCAST__CHANNEL")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Poll.IntervalMS != 250 {
		t.Errorf("env override failed: got %d, want 250", loaded.Poll.IntervalMS)
	}
	if loaded.Broadcast.Channel != "other-channel" {
		t.Errorf("env override failed: got %q, want other-channel", loaded.Broadcast.Channel)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"GAZEOVERLAY_POLL__INTERVAL_MS", "poll.interval_ms"},
		{"GAZEOVERLAY_STORAGE__KEYS__ENABLED", "storage.keys.enabled"},
		{"GAZEOVERLAY_LOG__LEVEL", "log.level"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty enabled key", func(c *Config) { c.Storage.Keys.Enabled = "" }},
		{"duplicate keys", func(c *Config) { c.Storage.Keys.Calibration = c.Storage.Keys.BackendURL }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"empty channel", func(c *Config) { c.Broadcast.Channel = "" }},
		{"zero interval", func(c *Config) { c.Poll.IntervalMS = 0 }},
		{"negative margin", func(c *Config) { c.Overlay.Margin = -1 }},
		{"empty marker", func(c *Config) { c.Overlay.ActivationMarker = "" }},
		{"bad glob", func(c *Config) { c.Overlay.TextInputKinds = []string{"input/["} }},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutMS = 0 }},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad simulator mode", func(c *Config) { c.Simulator.Mode = "random" }},
		{"zero simulator width", func(c *Config) { c.Simulator.Width = 0 }},
		{"negative fail_every", func(c *Config) { c.Simulator.FailEvery = -2 }},
		{"zero cell", func(c *Config) { c.Surface.CellHeight = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"input/*", []string{"input/*"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt("140"); err != nil {
		t.Errorf("140 should be valid: %v", err)
	}
	for _, s := range []string{"0", "-5", "abc", ""} {
		if err := validatePositiveInt(s); err == nil {
			t.Errorf("%q should be rejected", s)
		}
	}
}
