package repository

import (
	"context"

	"iss-aprs-tracker/internal/domain/model"
)

// -----------------------------
// Activity log
// -----------------------------

// ActivityLogRepository is the append-only store of observed activity.
// Events are never updated or deleted.
type ActivityLogRepository interface {
	Append(ctx context.Context, tx Tx, e *model.ActivityEvent) error
	Last(ctx context.Context, tx Tx) (*model.ActivityEvent, error)
	CountSince(ctx context.Context, tx Tx, sinceID string) (int, error)
}
