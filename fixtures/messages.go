package fixtures

import (
	"time"

	es "github.com/terraskye/eventcore"
)

// FixedTimestamp is the commit time used by message fixtures.
var FixedTimestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix()

// MessageOption is a functional option for configuring a Message.
type MessageOption func(*es.Message)

// NewMessage creates a Message at version 1 with FixedTimestamp.
func NewMessage(streamID es.Identifier, event es.Event, opts ...MessageOption) es.Message {
	msg := es.NewMessage(streamID, 1, event, FixedTimestamp)
	for _, opt := range opts {
		opt(&msg)
	}
	return msg
}

// WithVersion sets the stream version.
func WithVersion(v uint64) MessageOption {
	return func(m *es.Message) {
		m.Version = v
	}
}

// WithTimestamp sets the commit timestamp.
func WithTimestamp(t time.Time) MessageOption {
	return func(m *es.Message) {
		m.Timestamp = t.Unix()
	}
}

// MessagesFromEvents wraps events as messages versioned 1..n.
func MessagesFromEvents(streamID es.Identifier, events ...es.Event) []es.Message {
	return MessagesFromVersion(streamID, 1, events...)
}

// MessagesFromVersion wraps events as messages versioned from..from+n-1.
func MessagesFromVersion(streamID es.Identifier, from uint64, events ...es.Event) []es.Message {
	out := make([]es.Message, len(events))
	for i, ev := range events {
		out[i] = es.NewMessage(streamID, from+uint64(i), ev, FixedTimestamp)
	}
	return out
}

// Events extracts the events of messages in order.
func Events(messages []es.Message) []es.Event {
	out := make([]es.Event, len(messages))
	for i, msg := range messages {
		out[i] = msg.Event
	}
	return out
}
