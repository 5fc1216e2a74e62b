package fixtures

import (
	"context"
	"sync"

	es "github.com/terraskye/eventcore"
)

var (
	_ es.MessageConsumer   = (*ConsumerSpy)(nil)
	_ es.MessageDispatcher = (*DispatcherSpy)(nil)
)

// ConsumerSpy records every message delivered to it.
type ConsumerSpy struct {
	mu sync.Mutex

	HandleFn func(ctx context.Context, msg es.Message) error

	received []es.Message
	err      error
}

func NewConsumerSpy() *ConsumerSpy {
	return &ConsumerSpy{}
}

// FailWith makes Handle return err after recording the message.
func (c *ConsumerSpy) FailWith(err error) *ConsumerSpy {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

func (c *ConsumerSpy) Handle(ctx context.Context, msg es.Message) error {
	c.mu.Lock()
	c.received = append(c.received, msg)
	err := c.err
	c.mu.Unlock()

	if c.HandleFn != nil {
		return c.HandleFn(ctx, msg)
	}
	return err
}

// Messages returns a copy of the received messages in delivery order.
func (c *ConsumerSpy) Messages() []es.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]es.Message(nil), c.received...)
}

// Count returns the number of deliveries.
func (c *ConsumerSpy) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

// DispatcherSpy records Publish calls without delivering anything.
type DispatcherSpy struct {
	mu          sync.Mutex
	subscribers []es.MessageConsumer
	published   [][]es.Message
}

func NewDispatcherSpy() *DispatcherSpy {
	return &DispatcherSpy{}
}

func (d *DispatcherSpy) Subscribe(consumer es.MessageConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, consumer)
}

func (d *DispatcherSpy) Publish(_ context.Context, messages []es.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, append([]es.Message(nil), messages...))
}

// Batches returns every published batch in order.
func (d *DispatcherSpy) Batches() [][]es.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]es.Message(nil), d.published...)
}

// Subscribers returns the number of subscribed consumers.
func (d *DispatcherSpy) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}
