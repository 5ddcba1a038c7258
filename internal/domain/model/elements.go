package model

import (
	"time"

	"iss-aprs-tracker/internal/domain"
)

// OrbitalState is one fetched set of two-line elements for the tracked
// satellite. Immutable per fetch; a newer fetch supersedes it wholesale via
// an atomic pointer swap in the elements store.
type OrbitalState struct {
	NoradID   int
	Name      string
	Line1     string
	Line2     string
	Epoch     time.Time
	FetchedAt time.Time
	Source    string
}

func (o *OrbitalState) IsZero() bool { return o == nil || o.Line1 == "" }

// Age is the elapsed time between the element epoch and now.
func (o *OrbitalState) Age(now time.Time) time.Duration {
	return now.Sub(o.Epoch)
}

// CheckFresh returns ErrStaleElements when the elements are older than
// maxAge at time t. SGP4 accuracy degrades with element age, so propagation
// beyond the limit is refused rather than silently wrong.
func (o *OrbitalState) CheckFresh(t time.Time, maxAge time.Duration) error {
	if o.IsZero() {
		return domain.ErrInvalidArgument
	}
	if maxAge > 0 && t.Sub(o.Epoch) > maxAge {
		return domain.ErrStaleElements
	}
	return nil
}
