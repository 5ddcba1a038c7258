package telegram

import (
	"context"
	"time"

	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Notifier)(nil)

// Notifier renders notification texts and delivers them through a Messenger.
type Notifier struct {
	messenger adapter.Messenger
	now       func() time.Time
}

func NewNotifier(m adapter.Messenger) *Notifier {
	return &Notifier{messenger: m, now: time.Now}
}

func (n *Notifier) NotifyActivity(ctx context.Context, chatID int64, e *model.ActivityEvent, pass *model.PassWindow) error {
	return n.messenger.Send(ctx, chatID, ActivityText(e, pass, n.now()))
}

func (n *Notifier) NotifyWatch(ctx context.Context, chatID int64, e *model.ActivityEvent) error {
	return n.messenger.Send(ctx, chatID, WatchText(e))
}
