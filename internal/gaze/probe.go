package gaze

import (
	"context"
	"time"
)

// Fetcher is anything that can produce one sample from a backend.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL string) (Sample, error)
}

// Summary counts probe outcomes.
type Summary struct {
	Total      int `json:"total"`
	Calibrated int `json:"calibrated"`
	Normalized int `json:"normalized"`
	Empty      int `json:"empty"`
	Failed     int `json:"failed"`
}

// ProbeResult describes one probe request.
type ProbeResult struct {
	Index   int
	Kind    Kind
	Err     error
	Latency time.Duration
}

// Probe fetches count samples, interval apart, and tallies what came back.
// onResult, if non-nil, is called after each request.
func Probe(ctx context.Context, f Fetcher, baseURL string, count int, interval time.Duration, onResult func(ProbeResult)) (Summary, error) {
	var sum Summary
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if i > 0 && interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return sum, ctx.Err()
			case <-timer.C:
			}
		}

		start := time.Now()
		s, err := f.Fetch(ctx, baseURL)
		res := ProbeResult{Index: i, Latency: time.Since(start), Err: err}

		sum.Total++
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
		} else {
			res.Kind = s.Kind()
			switch res.Kind {
			case KindCalibrated:
				sum.Calibrated++
			case KindNormalized:
				sum.Normalized++
			default:
				sum.Empty++
			}
		}
		if onResult != nil {
			onResult(res)
		}
	}
	return sum, nil
}
