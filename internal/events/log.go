package events

import (
	"context"
	"log/slog"
)

// LogPublisher records events in the log instead of a broker. Used when no
// Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishEvent(_ context.Context, topic, key string, event Event) error {
	p.logger.Info("event published", "topic", topic, "key", key, "event_id", event.ID, "type", event.Type)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
