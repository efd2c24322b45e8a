package sink

import (
	"context"

	"analytics-service/models"

	"go.uber.org/zap"
)

// LogSink writes events to the service log. It is the development default.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Emit(_ context.Context, visitorID string, events ...models.NormalizedEvent) error {
	for _, ev := range events {
		l.logger.Info("analytics_event",
			zap.String("visitor_id", visitorID),
			zap.String("kind", string(ev.Kind)),
			zap.String("name", ev.Name),
			zap.String("emit_tag", ev.EmitTag),
			zap.Any("properties", ev.Properties),
		)
	}
	return nil
}

func (l *LogSink) Close() error {
	_ = l.logger.Sync()
	return nil
}
