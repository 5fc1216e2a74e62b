package eventcore

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Deserializer rebuilds an Event from the structured mapping produced by
// Event.Serialize.
type Deserializer func(payload map[string]any) (Event, error)

// EventRegistry maps stable event kind tags to their deserializers.
//
// A registry is populated once at process start and then only read. Stores
// that persist serialized events (such as the SQLite message store) use it
// to re-hydrate events on load from the tag recorded next to each payload.
type EventRegistry struct {
	mu            sync.RWMutex
	deserializers map[string]Deserializer
}

// NewEventRegistry creates an empty registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{
		deserializers: make(map[string]Deserializer),
	}
}

// Register adds a deserializer for the given tag.
//
// Panics:
//   - If tag is empty.
//   - If fn is nil.
//   - If a deserializer is already registered under tag.
//
// Example Usage:
//
//	registry.Register("OrderCreated", JSONDeserializer[OrderCreated]())
func (r *EventRegistry) Register(tag string, fn Deserializer) {
	if tag == "" {
		panic("cannot register event with empty tag")
	}
	if fn == nil {
		panic(fmt.Sprintf("cannot register nil deserializer for event: %s", tag))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.deserializers[tag]; exists {
		panic(fmt.Sprintf("event already registered: %s", tag))
	}
	r.deserializers[tag] = fn
}

// Deserialize rebuilds the event registered under tag from payload.
// Returns ErrUnknownEventType if nothing is registered under tag.
func (r *EventRegistry) Deserialize(tag string, payload map[string]any) (Event, error) {
	r.mu.RLock()
	fn, ok := r.deserializers[tag]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("deserialize %q: %w", tag, ErrUnknownEventType)
	}

	ev, err := fn(payload)
	if err != nil {
		return nil, fmt.Errorf("deserialize %q: %w", tag, err)
	}
	if ev == nil {
		return nil, fmt.Errorf("deserialize %q: deserializer returned nil", tag)
	}
	return ev, nil
}

// Registered reports whether a deserializer exists for tag.
func (r *EventRegistry) Registered(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.deserializers[tag]
	return ok
}

// Tags returns the sorted list of registered tags.
func (r *EventRegistry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.deserializers))
	for tag := range r.deserializers {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry is the process-wide registry used by RegisterEvent and
// DeserializeEvent.
var DefaultRegistry = NewEventRegistry()

// RegisterEvent registers fn under tag in DefaultRegistry.
func RegisterEvent(tag string, fn Deserializer) {
	DefaultRegistry.Register(tag, fn)
}

// DeserializeEvent rebuilds an event from DefaultRegistry.
func DeserializeEvent(tag string, payload map[string]any) (Event, error) {
	return DefaultRegistry.Deserialize(tag, payload)
}

// JSONDeserializer returns a Deserializer that decodes the payload into T by
// way of its JSON form. It suits events whose Serialize output mirrors their
// JSON field names.
func JSONDeserializer[T Event]() Deserializer {
	return func(payload map[string]any) (Event, error) {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		var ev T
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}
