package application

import (
	"context"
	"log/slog"
)

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

// LogNotifier writes notices to the log instead of pushing them anywhere.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, message string) error {
	n.Logger.InfoContext(ctx, "notice", "message", message)
	return nil
}
