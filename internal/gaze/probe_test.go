package gaze

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

// scriptedFetcher returns its responses in order.
type scriptedFetcher struct {
	samples []Sample
	errs    []error
	calls   int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, baseURL string) (Sample, error) {
	i := f.calls
	f.calls++
	return f.samples[i], f.errs[i]
}

func TestProbeTallies(t *testing.T) {
	f := &scriptedFetcher{
		samples: []Sample{
			{CalibratedPosition: &Vector{1, 2}},
			{NormalizedPupil: &Vector{0.1, 0.2}},
			{},
			{},
		},
		errs: []error{nil, nil, nil, errors.New("boom")},
	}

	var seen []ProbeResult
	sum, err := Probe(context.Background(), f, "http://tracker", 4, 0, func(r ProbeResult) {
		seen = append(seen, r)
	})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	want := Summary{Total: 4, Calibrated: 1, Normalized: 1, Empty: 1, Failed: 1}
	if sum != want {
		t.Errorf("Summary = %+v, want %+v", sum, want)
	}
	if len(seen) != 4 || seen[3].Err == nil || seen[0].Kind != KindCalibrated {
		t.Errorf("unexpected results %+v", seen)
	}
}

func TestProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &scriptedFetcher{samples: []Sample{{}, {}}, errs: []error{nil, nil}}
	if _, err := Probe(ctx, f, "http://tracker", 2, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if f.calls != 0 {
		t.Errorf("cancelled probe made %d requests, want 0", f.calls)
	}
}
