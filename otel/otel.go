package otel

import (
	"github.com/terraskye/eventcore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/terraskye/eventcore"
)

// Semantic attribute keys following OpenTelemetry conventions
const (
	// Stream attributes
	AttrStreamID      = attribute.Key("eventcore.stream.id")
	AttrStreamVersion = attribute.Key("eventcore.stream.version")

	// Event attributes
	AttrEventType  = attribute.Key("eventcore.event.type")
	AttrEventCount = attribute.Key("eventcore.events.count")

	// Operation attributes
	AttrOperation    = attribute.Key("eventcore.operation")
	AttrConflictType = attribute.Key("eventcore.conflict.type")
	AttrStoreType    = attribute.Key("eventcore.store.type")
)

var (
	meter  = otel.Meter(instrumentationName, metric.WithInstrumentationVersion(eventcore.InstrumentationVersion))
	tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(eventcore.InstrumentationVersion))

	// Message metrics
	MessagesAppended, _ = meter.Int64Counter(
		"eventcore.messages.appended",
		metric.WithDescription("Number of messages appended to streams"),
		metric.WithUnit("{message}"),
	)

	MessagesLoaded, _ = meter.Int64Counter(
		"eventcore.messages.loaded",
		metric.WithDescription("Number of messages loaded from streams"),
		metric.WithUnit("{message}"),
	)

	// Consumer metrics
	ConsumerHandled, _ = meter.Int64Counter(
		"eventcore.consumer.handled",
		metric.WithDescription("Number of messages offered to consumers"),
		metric.WithUnit("{message}"),
	)

	ConsumerErrors, _ = meter.Int64Counter(
		"eventcore.consumer.errors",
		metric.WithDescription("Number of consumer failures"),
		metric.WithUnit("{error}"),
	)

	ConsumerDuration, _ = meter.Float64Histogram(
		"eventcore.consumer.duration",
		metric.WithDescription("Consumer handling duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	// MessageStore metrics
	StoreOperations, _ = meter.Int64Counter(
		"eventcore.messagestore.operations",
		metric.WithDescription("Number of message store operations"),
		metric.WithUnit("{operation}"),
	)

	StoreDuration, _ = meter.Float64Histogram(
		"eventcore.messagestore.duration",
		metric.WithDescription("Message store operation duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	StoreErrors, _ = meter.Int64Counter(
		"eventcore.messagestore.errors",
		metric.WithDescription("Number of message store errors"),
		metric.WithUnit("{error}"),
	)

	// System metrics
	VersionConflicts, _ = meter.Int64Counter(
		"eventcore.concurrency.conflicts",
		metric.WithDescription("Number of optimistic concurrency conflicts"),
		metric.WithUnit("{conflict}"),
	)

	StreamVersionGauge, _ = meter.Int64Gauge(
		"eventcore.stream.version",
		metric.WithDescription("Last observed version of streams"),
		metric.WithUnit("{version}"),
	)
)
