package eventcore

import (
	"context"
	"testing"
	"time"
)

func TestContextGetters(t *testing.T) {
	streamID := NewIdentifier()
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	msg := NewMessage(streamID, 7, renamed{From: "a", To: "b"}, ts.Unix())

	ctxWithMsg := WithMessage(t.Context(), msg)
	emptyCtx := t.Context()

	tests := []struct {
		name string
		ctx  context.Context
		fn   func(context.Context) any
		want any
	}{
		{
			name: "StreamIDFromContext with value",
			ctx:  ctxWithMsg,
			fn:   func(c context.Context) any { return StreamIDFromContext(c) },
			want: streamID,
		},
		{
			name: "StreamIDFromContext empty",
			ctx:  emptyCtx,
			fn:   func(c context.Context) any { return StreamIDFromContext(c) },
			want: Identifier{},
		},
		{
			name: "VersionFromContext with value",
			ctx:  ctxWithMsg,
			fn:   func(c context.Context) any { return VersionFromContext(c) },
			want: uint64(7),
		},
		{
			name: "VersionFromContext empty",
			ctx:  emptyCtx,
			fn:   func(c context.Context) any { return VersionFromContext(c) },
			want: uint64(0),
		},
		{
			name: "TimestampFromContext with value",
			ctx:  ctxWithMsg,
			fn:   func(c context.Context) any { return TimestampFromContext(c) },
			want: ts,
		},
		{
			name: "TimestampFromContext empty",
			ctx:  emptyCtx,
			fn:   func(c context.Context) any { return TimestampFromContext(c) },
			want: time.Time{},
		},
		{
			name: "EventTypeFromContext with value",
			ctx:  ctxWithMsg,
			fn:   func(c context.Context) any { return EventTypeFromContext(c) },
			want: "Renamed",
		},
		{
			name: "EventTypeFromContext empty",
			ctx:  emptyCtx,
			fn:   func(c context.Context) any { return EventTypeFromContext(c) },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.ctx)
			if want, ok := tt.want.(time.Time); ok {
				if !got.(time.Time).Equal(want) {
					t.Errorf("got %v, want %v", got, want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageAccessors(t *testing.T) {
	msg := NewMessage(NewIdentifier(), 1, nil, 0)
	if msg.EventType() != "" {
		t.Errorf("EventType() = %q, want empty", msg.EventType())
	}
	if got := msg.OccurredAt(); !got.Equal(time.Unix(0, 0)) || got.Location() != time.UTC {
		t.Errorf("OccurredAt() = %v", got)
	}
}
