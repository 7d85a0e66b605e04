// Package notify provides the outbound notification and broadcast
// adapters. Delivery is an external concern; the default adapters log the
// intents so a mailer or websocket hub can be swapped in at the edges.
package notify

import (
	"context"
	"log/slog"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

// LogNotifier writes notification intents to structured logs.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipients []domain.Recipient, kind string, payload map[string]any) {
	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		emails = append(emails, r.Email)
	}
	attrs := []any{"kind", kind, "recipients", emails}
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	n.logger.InfoContext(ctx, "notification", attrs...)
}

// LogBroadcaster writes channel events to structured logs.
type LogBroadcaster struct {
	logger *slog.Logger
}

func NewLogBroadcaster(logger *slog.Logger) *LogBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogBroadcaster{logger: logger}
}

func (b *LogBroadcaster) Publish(ctx context.Context, channel, event string, payload map[string]any) {
	attrs := []any{"channel", channel, "event", event}
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	b.logger.InfoContext(ctx, "broadcast", attrs...)
}

// NoopNotifier drops all notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, []domain.Recipient, string, map[string]any) {}

// NoopBroadcaster drops all broadcasts.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Publish(context.Context, string, string, map[string]any) {}
