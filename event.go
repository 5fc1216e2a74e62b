package eventcore

import (
	"time"
)

// Event is an immutable fact that happened to an aggregate.
//
// EventType returns the stable kind tag used to pick both the replay handler
// and the deserializer; it must not depend on Go type names and must be
// callable on the zero value of the implementing type.
type Event interface {
	EventType() string
	Serialize() map[string]any
}

// Message is an Event wrapped with its position in a stream.
type Message struct {
	StreamID  Identifier
	Version   uint64
	Event     Event
	Timestamp int64 // epoch seconds
}

func NewMessage(streamID Identifier, version uint64, event Event, timestamp int64) Message {
	return Message{
		StreamID:  streamID,
		Version:   version,
		Event:     event,
		Timestamp: timestamp,
	}
}

// OccurredAt returns the commit timestamp as a UTC time.
func (m Message) OccurredAt() time.Time {
	return time.Unix(m.Timestamp, 0).UTC()
}

// EventType returns the kind tag of the wrapped event, or "" if there is none.
func (m Message) EventType() string {
	if m.Event == nil {
		return ""
	}
	return m.Event.EventType()
}
