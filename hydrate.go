package eventcore

import "fmt"

// EventApplier mutates aggregate state for one event kind.
type EventApplier interface {
	EventType() string
	Apply(event Event)
}

type typedApplier[T Event] struct {
	tag       string
	applyFunc func(event T)
}

// OnEvent creates an EventApplier for the event type T. The kind tag is taken
// from the zero value of T.
func OnEvent[T Event](fn func(event T)) EventApplier {
	var zero T
	return &typedApplier[T]{
		tag:       zero.EventType(),
		applyFunc: fn,
	}
}

// OnEventType creates an EventApplier for T under an explicit tag, for event
// types whose zero value cannot report one.
func OnEventType[T Event](tag string, fn func(event T)) EventApplier {
	return &typedApplier[T]{
		tag:       tag,
		applyFunc: fn,
	}
}

func (c *typedApplier[T]) EventType() string {
	return c.tag
}

func (c *typedApplier[T]) Apply(e Event) {
	if event, ok := e.(T); ok {
		c.applyFunc(event)
	}
}

// Hydrate builds a dispatch function that routes an event to the applier
// registered for its kind tag. Events without an applier are ignored.
//
// Panics if two appliers share a tag.
func Hydrate(appliers ...EventApplier) func(ev Event) {
	handlers := make(map[string]EventApplier, len(appliers))

	for _, applier := range appliers {
		tag := applier.EventType()
		if _, exists := handlers[tag]; exists {
			panic(fmt.Errorf("duplicate applier for event %s", tag))
		}
		handlers[tag] = applier
	}

	return func(ev Event) {
		if handler, ok := handlers[ev.EventType()]; ok {
			handler.Apply(ev)
		}
	}
}
