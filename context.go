package eventcore

import (
	"context"
	"time"
)

type ctxKey string

// Define constants for context keys
const (
	streamIDKey  ctxKey = "streamID"
	versionKey   ctxKey = "version"
	timestampKey ctxKey = "timestamp"
	eventTypeKey ctxKey = "eventType"
)

// WithMessage adds the position of msg to the context handed to consumers.
func WithMessage(ctx context.Context, msg Message) context.Context {
	ctx = context.WithValue(ctx, streamIDKey, msg.StreamID)
	ctx = context.WithValue(ctx, versionKey, msg.Version)
	ctx = context.WithValue(ctx, timestampKey, msg.Timestamp)
	ctx = context.WithValue(ctx, eventTypeKey, msg.EventType())
	return ctx
}

// StreamIDFromContext returns the stream id or the zero Identifier if not present
func StreamIDFromContext(ctx context.Context) Identifier {
	if v := ctx.Value(streamIDKey); v != nil {
		if id, ok := v.(Identifier); ok {
			return id
		}
	}
	return Identifier{}
}

// VersionFromContext returns the message version or 0 if not present
func VersionFromContext(ctx context.Context) uint64 {
	if v := ctx.Value(versionKey); v != nil {
		if n, ok := v.(uint64); ok {
			return n
		}
	}
	return 0
}

// TimestampFromContext returns the commit time or the zero time if not present
func TimestampFromContext(ctx context.Context) time.Time {
	if v := ctx.Value(timestampKey); v != nil {
		if ts, ok := v.(int64); ok {
			return time.Unix(ts, 0).UTC()
		}
	}
	return time.Time{}
}

// EventTypeFromContext returns the event kind tag or "" if not present
func EventTypeFromContext(ctx context.Context) string {
	if v := ctx.Value(eventTypeKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
