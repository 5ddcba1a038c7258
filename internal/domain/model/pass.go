package model

import "time"

// PassWindow is one predicted visibility interval of the ISS over a ground
// location. Derived data: recomputed on demand, never stored authoritatively.
// Invariants: Start <= End; windows for the same location never overlap.
type PassWindow struct {
	Start          time.Time
	End            time.Time
	MaxElevation   float64 // degrees above horizon
	MaxElevationAt time.Time
}

func (w PassWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// StartsWithin reports whether the pass begins inside [from, from+horizon].
func (w PassWindow) StartsWithin(from time.Time, horizon time.Duration) bool {
	return !w.Start.Before(from) && !w.Start.After(from.Add(horizon))
}
