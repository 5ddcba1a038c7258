// File: internal/domain/ports/adapter/activity.go
package adapter

import (
	"context"

	"iss-aprs-tracker/internal/domain/model"
)

// ActivitySource produces the most recent last-heard station from the
// upstream feed. How the entry is obtained (polling cadence, transport,
// backoff) is the source's business; the core only consumes samples.
type ActivitySource interface {
	LastHeard(ctx context.Context) (model.Station, error)
}
