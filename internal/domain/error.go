package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// ErrStaleElements means the orbital elements are older than the
	// configured maximum age and propagation accuracy can no longer be trusted.
	ErrStaleElements = errors.New("orbital elements too old")

	// ErrFetch covers recoverable failures of the elements source; the
	// last-known-good state is retained when it occurs.
	ErrFetch = errors.New("elements fetch failed")

	// ErrDelivery covers message delivery failures. Retry policy is owned by
	// the messaging collaborator, not by the notification gate.
	ErrDelivery = errors.New("message delivery failed")

	// ErrNoPasses is the expected-empty condition of the pass predictor:
	// no visibility window exists in the searched range.
	ErrNoPasses = errors.New("no passes found in window")

	// ErrAlreadyNotified means the dedup claim for a (subscriber, event)
	// pair was lost: someone already notified for this or a newer event.
	ErrAlreadyNotified = errors.New("subscriber already notified for event")

	// ErrLockHeld means another instance holds the distributed lock.
	ErrLockHeld = errors.New("lock held by another instance")
)
