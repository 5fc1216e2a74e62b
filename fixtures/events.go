package fixtures

import (
	"fmt"

	es "github.com/terraskye/eventcore"
)

// TestEvent is a configurable test event implementing the Event interface.
type TestEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

func (e TestEvent) EventType() string { return e.Type }

func (e TestEvent) Serialize() map[string]any {
	return map[string]any{"type": e.Type, "data": e.Data}
}

// TestEventBuilder provides a fluent API for constructing test events.
type TestEventBuilder struct {
	typ  string
	data string
}

// NewTestEvent creates a new TestEventBuilder with sensible defaults.
func NewTestEvent() *TestEventBuilder {
	return &TestEventBuilder{
		typ: "TestEvent",
	}
}

// WithType sets the event type.
func (b *TestEventBuilder) WithType(typ string) *TestEventBuilder {
	b.typ = typ
	return b
}

// WithData sets custom data on the event.
func (b *TestEventBuilder) WithData(data string) *TestEventBuilder {
	b.data = data
	return b
}

// Build constructs the TestEvent.
func (b *TestEventBuilder) Build() TestEvent {
	return TestEvent{
		Type: b.typ,
		Data: b.data,
	}
}

// BuildN creates n events with sequential data.
func (b *TestEventBuilder) BuildN(n int) []es.Event {
	events := make([]es.Event, n)
	for i := 0; i < n; i++ {
		events[i] = TestEvent{
			Type: b.typ,
			Data: fmt.Sprintf("%s-%d", b.data, i+1),
		}
	}
	return events
}

// Order domain events.

type OrderCreated struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

func (OrderCreated) EventType() string { return "OrderCreated" }

func (e OrderCreated) Serialize() map[string]any {
	return map[string]any{"order_id": e.OrderID, "customer_id": e.CustomerID}
}

type ItemAdded struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id"`
	Qty     int    `json:"qty"`
}

func (ItemAdded) EventType() string { return "ItemAdded" }

func (e ItemAdded) Serialize() map[string]any {
	return map[string]any{"order_id": e.OrderID, "item_id": e.ItemID, "qty": e.Qty}
}

type OrderShipped struct {
	OrderID string `json:"order_id"`
}

func (OrderShipped) EventType() string { return "OrderShipped" }

func (e OrderShipped) Serialize() map[string]any {
	return map[string]any{"order_id": e.OrderID}
}

// RegisterEvents adds deserializers for every fixture event to r. TestEvent
// is registered under "TestEvent"; use RegisterTestEvent for other tags.
func RegisterEvents(r *es.EventRegistry) {
	r.Register("OrderCreated", es.JSONDeserializer[OrderCreated]())
	r.Register("ItemAdded", es.JSONDeserializer[ItemAdded]())
	r.Register("OrderShipped", es.JSONDeserializer[OrderShipped]())
	RegisterTestEvent(r, "TestEvent")
}

// RegisterTestEvent registers TestEvent under tag.
func RegisterTestEvent(r *es.EventRegistry, tag string) {
	r.Register(tag, es.JSONDeserializer[TestEvent]())
}

// NewRegistry returns a registry with every fixture event registered.
func NewRegistry() *es.EventRegistry {
	r := es.NewEventRegistry()
	RegisterEvents(r)
	return r
}
