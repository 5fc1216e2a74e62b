package otel

import (
	"context"
	"fmt"
	"time"

	"github.com/terraskye/eventcore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithConsumerTelemetry wraps a MessageConsumer so that every delivery runs
// inside an internal span "messages.handle <eventType>" and is counted in
// ConsumerHandled, ConsumerDuration and, on failure, ConsumerErrors.
func WithConsumerTelemetry(next eventcore.MessageConsumer, options ...Option) eventcore.MessageConsumer {
	cfg := newConfig(options...)

	return eventcore.MessageConsumerFunc(func(ctx context.Context, msg eventcore.Message) error {
		eventType := msg.EventType()

		ctx, span := tracer.Start(ctx, cfg.spanName(ctx, fmt.Sprintf("messages.handle %s", eventType)),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(cfg.attributes(ctx,
				AttrEventType.String(eventType),
				AttrStreamID.String(msg.StreamID.String()),
				AttrStreamVersion.Int64(int64(msg.Version)),
			)...),
		)
		defer span.End()

		typeAttr := metric.WithAttributes(AttrEventType.String(eventType))
		ConsumerHandled.Add(ctx, 1, typeAttr)

		startTime := time.Now()
		err := next.Handle(ctx, msg)
		ConsumerDuration.Record(ctx, float64(time.Since(startTime).Milliseconds()), typeAttr)

		if err != nil {
			ConsumerErrors.Add(ctx, 1, typeAttr)
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})
}
