// File: internal/domain/ports/adapter/notifier.go
package adapter

import (
	"context"

	"iss-aprs-tracker/internal/domain/model"
)

// Notifier is the messaging collaborator the notification gate emits to.
// Rendering and transport live behind it; failures are domain.ErrDelivery
// and any retry policy is the implementation's concern.
type Notifier interface {
	// NotifyActivity tells a tracking subscriber the digipeater is back on
	// the air. pass is non-nil when a predicted visibility window gated the
	// notification.
	NotifyActivity(ctx context.Context, chatID int64, e *model.ActivityEvent, pass *model.PassWindow) error

	// NotifyWatch tells a watching subscriber their callsign was digipeated.
	NotifyWatch(ctx context.Context, chatID int64, e *model.ActivityEvent) error
}
