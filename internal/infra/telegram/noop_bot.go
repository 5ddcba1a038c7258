package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"iss-aprs-tracker/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger implements adapter.Messenger for local/dev runs.
// It logs messages instead of sending real Telegram messages.
type NoopMessenger struct {
	log *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	compLog := logger.With().Str("component", "NoopMessenger").Logger()
	return &NoopMessenger{log: &compLog}
}

func (m *NoopMessenger) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop send")
	return nil
}
