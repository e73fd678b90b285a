// Package settings combines the three persisted overlay values into one
// Settings view and writes them back on behalf of the settings CLI and the
// disable path.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ziadkadry99/gazeoverlay/internal/broadcast"
	"github.com/ziadkadry99/gazeoverlay/internal/kv"
)

// enabledValue is the only stored value that means "enabled".
const enabledValue = "true"

// Keys name the persisted values.
type Keys struct {
	BackendURL  string
	Calibration string
	Enabled     string
}

// List returns the keys in a fixed order.
func (k Keys) List() []string {
	return []string{k.BackendURL, k.Calibration, k.Enabled}
}

// Has reports whether key is one of the settings keys.
func (k Keys) Has(key string) bool {
	return key == k.BackendURL || key == k.Calibration || key == k.Enabled
}

// Calibration is the screen size the backend's calibrated positions refer to.
type Calibration struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c Calibration) valid() bool {
	return c.Width > 0 && c.Height > 0 && !math.IsInf(c.Width, 0) && !math.IsInf(c.Height, 0)
}

// Settings is the combined view of the persisted values.
type Settings struct {
	BackendURL  string       `json:"backend_url,omitempty"`
	Calibration *Calibration `json:"calibration,omitempty"`
	Enabled     bool         `json:"enabled"`
}

// HasBackend reports whether a backend endpoint is configured.
func (s Settings) HasBackend() bool { return s.BackendURL != "" }

// Effective is the enabled state the overlay acts on: a raw enabled flag
// without a backend endpoint is not actionable.
func (s Settings) Effective() bool { return s.Enabled && s.HasBackend() }

// Store reads and writes Settings through a kv.Storage.
type Store struct {
	kv      kv.Storage
	keys    Keys
	bus     *broadcast.Bus
	channel string
	origin  string
	logger  *slog.Logger
}

// Options configure a Store. Bus may be nil, in which case writes are not
// broadcast.
type Options struct {
	Keys    Keys
	Bus     *broadcast.Bus
	Channel string
	Logger  *slog.Logger
}

// NewStore creates a Store over storage.
func NewStore(storage kv.Storage, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:      storage,
		keys:    opts.Keys,
		bus:     opts.Bus,
		channel: opts.Channel,
		origin:  broadcast.NewOrigin(),
		logger:  logger,
	}
}

// Keys returns the storage keys this store reads.
func (s *Store) Keys() Keys { return s.keys }

// Load reads the current settings. It never fails: unreadable or malformed
// values degrade to "absent" and are logged.
func (s *Store) Load(ctx context.Context) Settings {
	var out Settings

	if v, ok := s.read(ctx, s.keys.BackendURL); ok {
		out.BackendURL = strings.TrimSpace(v)
	}

	if v, ok := s.read(ctx, s.keys.Calibration); ok {
		out.Calibration = s.parseCalibration(v)
	}

	if v, ok := s.read(ctx, s.keys.Enabled); ok {
		out.Enabled = v == enabledValue
	}

	return out
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading setting", "key", key, "err", err)
		return "", false
	}
	return v, ok
}

func (s *Store) parseCalibration(raw string) *Calibration {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var c Calibration
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Warn("invalid calibration, ignoring", "key", s.keys.Calibration, "err", err)
		return nil
	}
	if !c.valid() {
		s.logger.Warn("calibration dimensions must be positive, ignoring",
			"key", s.keys.Calibration, "width", c.Width, "height", c.Height)
		return nil
	}
	return &c
}

// SetBackendURL stores the backend endpoint. An empty url removes it.
func (s *Store) SetBackendURL(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return s.remove(ctx, s.keys.BackendURL)
	}
	return s.write(ctx, s.keys.BackendURL, url)
}

// SetCalibration stores calibration dimensions. A nil calibration removes them.
func (s *Store) SetCalibration(ctx context.Context, c *Calibration) error {
	if c == nil {
		return s.remove(ctx, s.keys.Calibration)
	}
	if !c.valid() {
		return fmt.Errorf("calibration dimensions must be positive, got %vx%v", c.Width, c.Height)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling calibration: %w", err)
	}
	return s.write(ctx, s.keys.Calibration, string(data))
}

// SetEnabled stores the raw enabled flag.
func (s *Store) SetEnabled(ctx context.Context, enabled bool) error {
	if !enabled {
		return s.Disable(ctx)
	}
	return s.write(ctx, s.keys.Enabled, enabledValue)
}

// Disable clears the enabled flag and notifies in-process listeners.
func (s *Store) Disable(ctx context.Context) error {
	return s.remove(ctx, s.keys.Enabled)
}

func (s *Store) write(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return err
	}
	s.notify(key)
	return nil
}

func (s *Store) remove(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return err
	}
	s.notify(key)
	return nil
}

func (s *Store) notify(key string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(s.channel, broadcast.Message{Origin: s.origin, Key: key})
}
