package fixtures

import (
	"errors"

	es "github.com/terraskye/eventcore"
)

const OrderType = "Order"

var (
	ErrOrderShipped    = errors.New("order already shipped")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Order is a small event-sourced aggregate used across the test suites.
type Order struct {
	es.AggregateBase

	ID         string
	CustomerID string
	Items      map[string]int
	Shipped    bool
}

// NewOrder returns a zero-state Order ready for replay.
func NewOrder() *Order {
	o := &Order{Items: make(map[string]int)}
	o.Handle(
		es.OnEvent(o.onCreated),
		es.OnEvent(o.onItemAdded),
		es.OnEvent(o.onShipped),
	)
	return o
}

// CreateOrder starts a new order by recording OrderCreated.
func CreateOrder(id es.Identifier, customerID string) *Order {
	o := NewOrder()
	o.Record(OrderCreated{OrderID: id.String(), CustomerID: customerID})
	return o
}

func (o *Order) AggregateType() string { return OrderType }

func (o *Order) AddItem(itemID string, qty int) error {
	if o.Shipped {
		return ErrOrderShipped
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	o.Record(ItemAdded{OrderID: o.ID, ItemID: itemID, Qty: qty})
	return nil
}

func (o *Order) Ship() error {
	if o.Shipped {
		return ErrOrderShipped
	}
	o.Record(OrderShipped{OrderID: o.ID})
	return nil
}

func (o *Order) onCreated(e OrderCreated) {
	o.ID = e.OrderID
	o.CustomerID = e.CustomerID
}

func (o *Order) onItemAdded(e ItemAdded) {
	o.Items[e.ItemID] += e.Qty
}

func (o *Order) onShipped(OrderShipped) {
	o.Shipped = true
}
