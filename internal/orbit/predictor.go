package orbit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
)

// PredictorConfig tunes the pass search.
type PredictorConfig struct {
	CoarseStep    time.Duration // scan step while looking for horizon crossings
	FineStep      time.Duration // sampling step inside a pass (max-elevation tracking)
	MinElevation  float64       // visibility floor in degrees; lower passes are dropped
	MaxPasses     int           // hard cap on windows returned per search
	MaxElementAge time.Duration // refuse propagation past this element age
}

func (c PredictorConfig) withDefaults() PredictorConfig {
	if c.CoarseStep <= 0 {
		c.CoarseStep = 30 * time.Second
	}
	if c.FineStep <= 0 {
		c.FineStep = 5 * time.Second
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = 20
	}
	return c
}

// Predictor derives visibility windows for a ground location from an
// OrbitalState. Stateless and safe for concurrent use.
type Predictor struct {
	cfg PredictorConfig
}

func NewPredictor(cfg PredictorConfig) *Predictor {
	return &Predictor{cfg: cfg.withDefaults()}
}

// minPassDur drops horizon-grazing blips the coarse scan can produce.
const minPassDur = 10 * time.Second

// Windows finds all visibility windows for loc in [from, to], ordered
// ascending by start time. Windows never overlap and each satisfies
// Start <= End. An empty search result is (nil, nil) — not an error.
//
// Algorithm: coarse time-step scan for elevation sign changes against the
// horizon, then bisection of each rise and set crossing down to one-second
// brackets, with max elevation tracked by fine sampling inside the pass.
func (p *Predictor) Windows(ctx context.Context, st *model.OrbitalState, loc model.GroundLocation, from, to time.Time) ([]model.PassWindow, error) {
	if !from.Before(to) {
		return nil, domain.ErrInvalidArgument
	}
	if err := st.CheckFresh(from, p.cfg.MaxElementAge); err != nil {
		return nil, err
	}

	prop, err := NewPropagator(st, p.cfg.MaxElementAge)
	if err != nil {
		return nil, fmt.Errorf("predictor init: %w", err)
	}
	obs := newObserver(loc)

	var windows []model.PassWindow

	t := from
	prevAbove := false
	if el, err := prop.ElevationAt(obs, t); err == nil && el > 0 {
		// Already above the horizon at the window start: open a pass there.
		w, setAt, ok := p.tracePass(ctx, prop, obs, t, to)
		if ok && w.Duration() >= minPassDur && w.MaxElevation >= p.cfg.MinElevation {
			windows = append(windows, w)
		}
		t = setAt.Add(p.cfg.CoarseStep)
	}

	for t.Before(to) && len(windows) < p.cfg.MaxPasses {
		if ctx.Err() != nil {
			return windows, ctx.Err()
		}

		el, err := prop.ElevationAt(obs, t)
		if err != nil {
			if isStale(err) {
				break // everything past this point is stale too
			}
			t = t.Add(p.cfg.CoarseStep)
			continue
		}

		above := el > 0
		if above && !prevAbove {
			rise := bisectCrossing(prop, obs, t.Add(-p.cfg.CoarseStep), t, true)
			if rise.Before(from) {
				rise = from
			}
			w, setAt, ok := p.tracePass(ctx, prop, obs, rise, to)
			if ok && w.Duration() >= minPassDur && w.MaxElevation >= p.cfg.MinElevation {
				windows = append(windows, w)
			}
			t = setAt.Add(p.cfg.CoarseStep)
			prevAbove = false
			continue
		}

		prevAbove = above
		t = t.Add(p.cfg.CoarseStep)
	}

	return windows, nil
}

// NextPass returns the first window starting in [from, from+horizon], or
// domain.ErrNoPasses when the range is clear. This is the point query the
// notification gate uses; the range query (Windows) reports the same
// condition as an empty slice.
func (p *Predictor) NextPass(ctx context.Context, st *model.OrbitalState, loc model.GroundLocation, from time.Time, horizon time.Duration) (model.PassWindow, error) {
	windows, err := p.Windows(ctx, st, loc, from, from.Add(horizon))
	if err != nil {
		return model.PassWindow{}, err
	}
	for _, w := range windows {
		if w.StartsWithin(from, horizon) {
			return w, nil
		}
	}
	return model.PassWindow{}, domain.ErrNoPasses
}

// tracePass follows one pass from its rise time: samples elevation at the
// fine step to track the culmination, then bisects the set crossing. Returns
// the window, the set time the caller should resume scanning from, and
// whether a well-formed window was produced.
func (p *Predictor) tracePass(ctx context.Context, prop *Propagator, obs observer, rise, limit time.Time) (model.PassWindow, time.Time, bool) {
	maxEl := -90.0
	maxElAt := rise

	t := rise
	last := rise
	for !t.After(limit) {
		if ctx.Err() != nil {
			break
		}
		el, err := prop.ElevationAt(obs, t)
		if err != nil {
			t = t.Add(p.cfg.FineStep)
			continue
		}
		if el <= 0 && t.After(rise) {
			set := bisectCrossing(prop, obs, last, t, false)
			return model.PassWindow{
				Start:          rise,
				End:            set,
				MaxElevation:   maxEl,
				MaxElevationAt: maxElAt,
			}, set, true
		}
		if el > maxEl {
			maxEl = el
			maxElAt = t
		}
		last = t
		t = t.Add(p.cfg.FineStep)
	}

	// Still above the horizon at the search limit: close the window there.
	if maxEl > -90.0 {
		return model.PassWindow{
			Start:          rise,
			End:            limit,
			MaxElevation:   maxEl,
			MaxElevationAt: maxElAt,
		}, limit, true
	}
	return model.PassWindow{}, limit, false
}

// bisectCrossing narrows a horizon crossing bracketed by [lo, hi] to a
// one-second interval. rising selects which side of the crossing is sought:
// the first above-horizon instant for a rise, the first below for a set.
func bisectCrossing(prop *Propagator, obs observer, lo, hi time.Time, rising bool) time.Time {
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		el, err := prop.ElevationAt(obs, mid)
		if err != nil {
			break
		}
		if (el > 0) == rising {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

func isStale(err error) bool {
	return errors.Is(err, domain.ErrStaleElements)
}
