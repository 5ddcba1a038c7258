package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*RealMessenger)(nil)

// RealMessenger delivers MarkdownV2 messages through the Telegram Bot API.
// It is send-only: this service has no command surface, subscribers are
// managed through the admin HTTP API.
type RealMessenger struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewRealMessenger(token string, logger *zerolog.Logger) (*RealMessenger, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	compLog := logger.With().Str("component", "Messenger").Logger()
	return &RealMessenger{bot: bot, log: &compLog}, nil
}

// Send delivers text to chatID. Failures are wrapped in domain.ErrDelivery;
// the caller decides whether to retry.
func (m *RealMessenger) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := m.bot.Send(msg); err != nil {
		m.log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		return fmt.Errorf("%w: chat %d: %v", domain.ErrDelivery, chatID, err)
	}
	return nil
}
