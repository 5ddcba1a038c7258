package model

import (
	"strings"
	"time"

	"iss-aprs-tracker/internal/domain"

	"github.com/google/uuid"
)

// Subscriber is a domain entity representing a chat that asked to be told
// when the ISS APRS digipeater comes back on the air.
//
// Location and ThresholdHours drive the conditional gate: when a location is
// set, the subscriber is only notified if a visibility pass starts within the
// next ThresholdHours. Without a location the notification is unconditional.
// WatchCallsign additionally alerts on packets from one specific station.
type Subscriber struct {
	ID             string
	ChatID         int64
	Username       string
	Location       *GroundLocation
	ThresholdHours float64
	WatchCallsign  string
	LastNotifiedAt *time.Time
	CreatedAt      time.Time
}

func NewSubscriber(id string, chatID int64, username string, thresholdHours float64) (*Subscriber, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if thresholdHours < 0 || thresholdHours > 72 {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscriber{
		ID:             id,
		ChatID:         chatID,
		Username:       username,
		ThresholdHours: thresholdHours,
		CreatedAt:      time.Now(),
	}, nil
}

func (s *Subscriber) IsZero() bool { return s == nil || s.ID == "" }

// Watches reports whether this subscriber watches the given callsign.
// Callsign comparison is case-insensitive and includes the SSID.
func (s *Subscriber) Watches(callsign string) bool {
	if s.WatchCallsign == "" || callsign == "" {
		return false
	}
	return strings.EqualFold(s.WatchCallsign, callsign)
}

// NotifiedFor reports whether the subscriber was already notified for an
// event detected at t (or any later one). Used for dedup under replay.
func (s *Subscriber) NotifiedFor(t time.Time) bool {
	return s.LastNotifiedAt != nil && !s.LastNotifiedAt.Before(t)
}
