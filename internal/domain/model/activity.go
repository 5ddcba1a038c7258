package model

import (
	"time"

	"iss-aprs-tracker/internal/domain"

	"github.com/oklog/ulid/v2"
)

// ActivityState tells whether an event marks the digipeater coming back on
// the air (ON) or routine traffic while it is already known to be active (OFF).
type ActivityState string

const (
	ActivityOn  ActivityState = "on"
	ActivityOff ActivityState = "off"
)

// Station is one last-heard entry from the upstream feed: the callsign the
// ISS digipeated, when the packet was heard, and a findu.com detail link.
type Station struct {
	Callsign string
	HeardAt  time.Time
	Link     string
}

func (s Station) IsZero() bool { return s.Callsign == "" }

// Equal compares the feed identity of two entries (link is cosmetic).
func (s Station) Equal(o Station) bool {
	return s.Callsign == o.Callsign && s.HeardAt.Equal(o.HeardAt)
}

// ActivityEvent is one append-only record of observed APRS activity.
// Events are immutable; DetectedAt is monotonically non-decreasing across
// the stream because a single monitor loop produces them.
type ActivityEvent struct {
	ID         string // ULID, time-ordered
	Station    Station
	DetectedAt time.Time
	State      ActivityState
}

func NewActivityEvent(st Station, detectedAt time.Time, state ActivityState) (*ActivityEvent, error) {
	if st.IsZero() || detectedAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if state != ActivityOn && state != ActivityOff {
		return nil, domain.ErrInvalidArgument
	}
	return &ActivityEvent{
		ID:         ulid.Make().String(),
		Station:    st,
		DetectedAt: detectedAt,
		State:      state,
	}, nil
}
