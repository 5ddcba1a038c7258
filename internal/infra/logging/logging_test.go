// File: internal/infra/logging/logging_test.go
package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWith(t *testing.T) {
	t.Run("emits ids carried in the context", func(t *testing.T) {
		var buf bytes.Buffer
		base := zerolog.New(&buf)

		ctx := context.Background()
		ctx = WithTraceID(ctx, "req-42")
		ctx = WithChatID(ctx, 777)
		ctx = WithEventID(ctx, "01JK5D2M9D0000000000000000")

		With(ctx, &base).Info().Msg("hello")

		out := buf.String()
		for _, want := range []string{
			`"trace_id":"req-42"`,
			`"chat_id":777`,
			`"event_id":"01JK5D2M9D0000000000000000"`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("log line missing %s: %s", want, out)
			}
		}
	})

	t.Run("bare context adds no id fields", func(t *testing.T) {
		var buf bytes.Buffer
		base := zerolog.New(&buf)

		With(context.Background(), &base).Info().Msg("hello")

		out := buf.String()
		for _, field := range []string{"trace_id", "chat_id", "event_id"} {
			if strings.Contains(out, field) {
				t.Errorf("unexpected %s in log line: %s", field, out)
			}
		}
	})
}
