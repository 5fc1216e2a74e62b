package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraskye/eventcore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var _ eventcore.MessageStore = (*TelemetryStore)(nil)

// TelemetryStore wraps a MessageStore with OpenTelemetry tracing and metrics.
//
// Every operation gets a client span named "MessageStore.<Op>" and is counted
// in StoreOperations and StoreDuration. Failures are recorded on the span and
// in StoreErrors; version conflicts are additionally counted in
// VersionConflicts. Errors are returned exactly as the wrapped store produced
// them.
type TelemetryStore struct {
	next      eventcore.MessageStore
	cfg       *config
	storeType string
}

// WithMessageStoreTelemetry decorates next with tracing and metrics.
//
// Example Usage:
//
//	store := otel.WithMessageStoreTelemetry(memory.NewMessageStore())
//	repo := eventcore.NewRepository(log, store, dispatcher)
func WithMessageStoreTelemetry(next eventcore.MessageStore, options ...Option) *TelemetryStore {
	return &TelemetryStore{
		next:      next,
		cfg:       newConfig(options...),
		storeType: fmt.Sprintf("%T", next),
	}
}

func (t *TelemetryStore) start(ctx context.Context, op string, streamID eventcore.Identifier, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs,
		AttrOperation.String(op),
		AttrStreamID.String(streamID.String()),
		AttrStoreType.String(t.storeType),
	)
	ctx, span := tracer.Start(ctx, t.cfg.spanName(ctx, "MessageStore."+op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.attributes(ctx, attrs...)...),
	)
	return ctx, span, time.Now()
}

func (t *TelemetryStore) finish(ctx context.Context, op string, span trace.Span, startedAt time.Time, err error) {
	opAttr := metric.WithAttributes(AttrOperation.String(op))

	StoreOperations.Add(ctx, 1, opAttr)
	StoreDuration.Record(ctx, float64(time.Since(startedAt).Milliseconds()), opAttr)

	if err != nil {
		var conflict *eventcore.VersionConflictError
		if errors.As(err, &conflict) {
			VersionConflicts.Add(ctx, 1, metric.WithAttributes(AttrConflictType.String("version")))
			span.SetAttributes(AttrStreamVersion.Int64(int64(conflict.Version)))
		}
		if !errors.Is(err, eventcore.ErrStreamNotFound) {
			StoreErrors.Add(ctx, 1, opAttr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (t *TelemetryStore) Exists(ctx context.Context, streamID eventcore.Identifier) (bool, error) {
	ctx, span, startedAt := t.start(ctx, "Exists", streamID)
	exists, err := t.next.Exists(ctx, streamID)
	t.finish(ctx, "Exists", span, startedAt, err)
	return exists, err
}

func (t *TelemetryStore) Load(ctx context.Context, streamID eventcore.Identifier) ([]eventcore.Message, error) {
	ctx, span, startedAt := t.start(ctx, "Load", streamID)
	messages, err := t.next.Load(ctx, streamID)
	if err == nil {
		span.SetAttributes(AttrEventCount.Int(len(messages)))
		MessagesLoaded.Add(ctx, int64(len(messages)))
	}
	t.finish(ctx, "Load", span, startedAt, err)
	return messages, err
}

func (t *TelemetryStore) Append(ctx context.Context, streamID eventcore.Identifier, messages []eventcore.Message) error {
	ctx, span, startedAt := t.start(ctx, "Append", streamID, AttrEventCount.Int(len(messages)))
	err := t.next.Append(ctx, streamID, messages)
	if err == nil && len(messages) > 0 {
		MessagesAppended.Add(ctx, int64(len(messages)))
		StreamVersionGauge.Record(ctx, int64(messages[len(messages)-1].Version))
	}
	t.finish(ctx, "Append", span, startedAt, err)
	return err
}

func (t *TelemetryStore) Version(ctx context.Context, streamID eventcore.Identifier) (uint64, error) {
	ctx, span, startedAt := t.start(ctx, "Version", streamID)
	version, err := t.next.Version(ctx, streamID)
	if err == nil {
		span.SetAttributes(AttrStreamVersion.Int64(int64(version)))
	}
	t.finish(ctx, "Version", span, startedAt, err)
	return version, err
}

// Close just forwards
func (t *TelemetryStore) Close() error {
	return t.next.Close()
}
