package eventcore

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/terraskye/eventcore"

	// InstrumentationVersion is reported by every tracer and meter of this module.
	InstrumentationVersion = "0.1.0"
)

const (
	attrAggregateType = attribute.Key("eventcore.aggregate.type")
	attrAggregateID   = attribute.Key("eventcore.aggregate.id")
	attrStreamID      = attribute.Key("eventcore.stream.id")
	attrEventCount    = attribute.Key("eventcore.events.count")
)

var tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(InstrumentationVersion))

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
