package logging

import (
	"context"
	"log/slog"

	"github.com/terraskye/eventcore"
)

func WithConsumerLogging(logger *slog.Logger, next eventcore.MessageConsumer) eventcore.MessageConsumer {
	return eventcore.MessageConsumerFunc(func(ctx context.Context, msg eventcore.Message) error {
		l := logger.With(
			"stream-id", msg.StreamID.String(),
			"version", msg.Version,
			"event-type", msg.EventType(),
			"timestamp", msg.Timestamp,
		)

		l.DebugContext(ctx, "message processing started")

		err := next.Handle(ctx, msg)

		if err != nil {
			l.ErrorContext(ctx, "error processing message", "error", err)
		} else {
			l.DebugContext(ctx, "message processed successfully")
		}

		return err
	})
}
