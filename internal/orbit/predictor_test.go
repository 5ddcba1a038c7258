// File: internal/orbit/predictor_test.go
package orbit

import (
	"context"
	"errors"
	"testing"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
)

var nyc = model.GroundLocation{LatDeg: 40.7128, LonDeg: -74.0060, AltM: 10}

func TestPredictorWindows(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(PredictorConfig{MinElevation: 10})
	from := issElements.Epoch
	to := from.Add(24 * time.Hour)

	windows, err := p.Windows(ctx, issElements, nyc, from, to)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(windows) == 0 {
		t.Fatal("expected at least one pass over a mid-latitude city in 24h")
	}

	t.Run("windows are ordered and disjoint", func(t *testing.T) {
		for i, w := range windows {
			if !w.Start.Before(w.End) {
				t.Errorf("window %d: start %v not before end %v", i, w.Start, w.End)
			}
			if i > 0 && !windows[i-1].End.Before(w.Start) {
				t.Errorf("window %d overlaps previous (prev end %v, start %v)", i, windows[i-1].End, w.Start)
			}
		}
	})

	t.Run("durations are physically plausible", func(t *testing.T) {
		for i, w := range windows {
			if d := w.Duration(); d < minPassDur || d > 20*time.Minute {
				t.Errorf("window %d: implausible duration %v", i, d)
			}
		}
	})

	t.Run("culmination honors the floor and lies inside the window", func(t *testing.T) {
		for i, w := range windows {
			if w.MaxElevation < 10 {
				t.Errorf("window %d: max elevation %.1f below the floor", i, w.MaxElevation)
			}
			if w.MaxElevationAt.Before(w.Start) || w.MaxElevationAt.After(w.End) {
				t.Errorf("window %d: culmination %v outside [%v, %v]", i, w.MaxElevationAt, w.Start, w.End)
			}
			if w.Start.Before(from) || w.End.After(to) {
				t.Errorf("window %d: outside the search range", i)
			}
		}
	})

	t.Run("search is restartable", func(t *testing.T) {
		// Re-running from shortly before the first pass must find the same
		// rise time; the gate relies on this after a process restart.
		first := windows[0]
		again, err := p.Windows(ctx, issElements, nyc, first.Start.Add(-90*time.Minute), to)
		if err != nil {
			t.Fatalf("windows: %v", err)
		}
		if len(again) == 0 {
			t.Fatal("expected the pass to be found again")
		}
		if drift := again[0].Start.Sub(first.Start); drift < -time.Minute || drift > time.Minute {
			t.Errorf("restarted search drifted by %v", drift)
		}
	})

	t.Run("lower floor never yields fewer passes", func(t *testing.T) {
		all, err := NewPredictor(PredictorConfig{MinElevation: 0}).Windows(ctx, issElements, nyc, from, to)
		if err != nil {
			t.Fatalf("windows: %v", err)
		}
		if len(all) < len(windows) {
			t.Errorf("floor 0 found %d passes, floor 10 found %d", len(all), len(windows))
		}
	})
}

func TestPredictorWindowsErrors(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(PredictorConfig{MinElevation: 10, MaxElementAge: 72 * time.Hour})

	t.Run("inverted range", func(t *testing.T) {
		from := issElements.Epoch
		if _, err := p.Windows(ctx, issElements, nyc, from, from); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("stale elements", func(t *testing.T) {
		from := issElements.Epoch.Add(30 * 24 * time.Hour)
		if _, err := p.Windows(ctx, issElements, nyc, from, from.Add(time.Hour)); !errors.Is(err, domain.ErrStaleElements) {
			t.Errorf("expected ErrStaleElements, got: %v", err)
		}
	})

	t.Run("cancelled context stops the scan", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		from := issElements.Epoch
		if _, err := p.Windows(cctx, issElements, nyc, from, from.Add(24*time.Hour)); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})
}

func TestPredictorNextPass(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(PredictorConfig{MinElevation: 10})
	from := issElements.Epoch

	t.Run("finds the first pass within the horizon", func(t *testing.T) {
		w, err := p.NextPass(ctx, issElements, nyc, from, 24*time.Hour)
		if err != nil {
			t.Fatalf("next pass: %v", err)
		}
		if !w.StartsWithin(from, 24*time.Hour) {
			t.Errorf("pass start %v outside [%v, +24h]", w.Start, from)
		}
	})

	t.Run("polar observer never sees the station", func(t *testing.T) {
		// 51.6 deg inclination keeps the ground track ~38 deg of arc from
		// the pole; at 420 km altitude the station never clears the horizon.
		pole := model.GroundLocation{LatDeg: 89.9, LonDeg: 0, AltM: 0}
		_, err := p.NextPass(ctx, issElements, pole, from, 24*time.Hour)
		if !errors.Is(err, domain.ErrNoPasses) {
			t.Errorf("expected ErrNoPasses, got: %v", err)
		}
	})

	t.Run("empty range query is not an error", func(t *testing.T) {
		pole := model.GroundLocation{LatDeg: 89.9, LonDeg: 0, AltM: 0}
		windows, err := p.Windows(ctx, issElements, pole, from, from.Add(24*time.Hour))
		if err != nil {
			t.Fatalf("windows: %v", err)
		}
		if len(windows) != 0 {
			t.Errorf("expected no windows at the pole, got %d", len(windows))
		}
	})
}
