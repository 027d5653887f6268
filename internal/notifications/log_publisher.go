package notifications

import (
	"context"
	"log/slog"
)

// LogPublisher writes notifications to the application log.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	p.log.InfoContext(ctx, "notification", "subject", msg.Subject, "message", msg.Body)
	return nil
}
