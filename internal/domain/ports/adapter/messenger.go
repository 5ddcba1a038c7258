// File: internal/domain/ports/adapter/messenger.go
package adapter

import "context"

// Messenger delivers a rendered notification to a chat. Implementations wrap
// failures in domain.ErrDelivery; the retry policy belongs to the caller.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}
