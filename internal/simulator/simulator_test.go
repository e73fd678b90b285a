package simulator

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ziadkadry99/gazeoverlay/internal/config"
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
)

func newTestSource(t *testing.T, mode config.SimulatorMode, failEvery int) *Source {
	t.Helper()
	now := time.Unix(1700000000, 0)
	src, err := NewSource(Options{
		Mode:      mode,
		Width:     1280,
		Height:    720,
		Period:    6 * time.Second,
		FailEvery: failEvery,
		Clock:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func TestModesFillExpectedFields(t *testing.T) {
	tests := []struct {
		mode       config.SimulatorMode
		calibrated bool
		normalized bool
	}{
		{config.ModeCalibrated, true, false},
		{config.ModeNormalized, false, true},
		{config.ModeMixed, true, true},
		{config.ModeEmpty, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s := newTestSource(t, tt.mode, 0).At(time.Second)
			if (s.CalibratedPosition != nil) != tt.calibrated {
				t.Errorf("calibrated present = %v", s.CalibratedPosition != nil)
			}
			if (s.NormalizedPupil != nil) != tt.normalized {
				t.Errorf("normalized present = %v", s.NormalizedPupil != nil)
			}
		})
	}
}

func TestPathStaysInsideUnitSquare(t *testing.T) {
	src := newTestSource(t, config.ModeMixed, 0)
	for ms := 0; ms < 6000; ms += 37 {
		s := src.At(time.Duration(ms) * time.Millisecond)
		n := s.NormalizedPupil
		if n.X < 0 || n.X > 1 || n.Y < 0 || n.Y > 1 {
			t.Fatalf("t=%dms normalized %v out of range", ms, *n)
		}
		c := s.CalibratedPosition
		if math.Abs(c.X-n.X*1280) > 1e-9 || math.Abs(c.Y-n.Y*720) > 1e-9 {
			t.Fatalf("t=%dms calibrated %v disagrees with normalized %v", ms, *c, *n)
		}
	}
}

func TestPathIsPeriodic(t *testing.T) {
	src := newTestSource(t, config.ModeNormalized, 0)
	a := src.At(500 * time.Millisecond).NormalizedPupil
	b := src.At(6500 * time.Millisecond).NormalizedPupil
	if math.Abs(a.X-b.X) > 1e-9 || math.Abs(a.Y-b.Y) > 1e-9 {
		t.Errorf("positions one period apart differ: %v vs %v", *a, *b)
	}
}

func TestFailEvery(t *testing.T) {
	src := newTestSource(t, config.ModeNormalized, 3)
	var failed []int
	for i := 1; i <= 9; i++ {
		if _, ok := src.Next(); !ok {
			failed = append(failed, i)
		}
	}
	if len(failed) != 3 || failed[0] != 3 || failed[1] != 6 || failed[2] != 9 {
		t.Errorf("failed requests = %v, want [3 6 9]", failed)
	}
	if src.Requests() != 9 {
		t.Errorf("requests = %d, want 9", src.Requests())
	}
}

func TestNewSourceValidates(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad mode", Options{Mode: "wobbly", Width: 1, Height: 1, Period: time.Second}},
		{"zero width", Options{Mode: config.ModeMixed, Height: 1, Period: time.Second}},
		{"zero period", Options{Mode: config.ModeMixed, Width: 1, Height: 1}},
		{"negative fail", Options{Mode: config.ModeMixed, Width: 1, Height: 1, Period: time.Second, FailEvery: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSource(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClientAgainstSimulator(t *testing.T) {
	src := newTestSource(t, config.ModeCalibrated, 2)
	ts := httptest.NewServer(NewRouter(src))
	defer ts.Close()

	client := gaze.NewClient(time.Second)
	ctx := context.Background()

	s, err := client.Fetch(ctx, ts.URL+"/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if s.Kind() != gaze.KindCalibrated {
		t.Errorf("kind = %s, want calibrated", s.Kind())
	}

	_, err = client.Fetch(ctx, ts.URL)
	var statusErr *gaze.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("second fetch err = %v, want 503 status error", err)
	}
}

func TestGazeResponseHeaders(t *testing.T) {
	src := newTestSource(t, config.ModeEmpty, 0)
	req := httptest.NewRequest("GET", gaze.Path, nil)
	w := httptest.NewRecorder()
	NewRouter(src).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := w.Body.String(); got != "{}\n" {
		t.Errorf("empty mode body = %q, want {}", got)
	}
}
