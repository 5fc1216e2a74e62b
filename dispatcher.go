package eventcore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// MessageConsumer reacts to committed messages.
type MessageConsumer interface {
	// Handle processes the given Message within the provided context.
	Handle(ctx context.Context, msg Message) error
}

// MessageConsumerFunc adapts a plain function to the MessageConsumer interface.
//
// Example Usage:
//
//	dispatcher.Subscribe(MessageConsumerFunc(func(ctx context.Context, msg Message) error {
//	    fmt.Println("committed:", msg.EventType(), msg.Version)
//	    return nil
//	}))
type MessageConsumerFunc func(ctx context.Context, msg Message) error

func (f MessageConsumerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// MessageDispatcher fans newly committed messages out to its subscribers.
type MessageDispatcher interface {
	// Subscribe appends consumer to the subscriber list. Subscription order
	// is delivery order.
	Subscribe(consumer MessageConsumer)

	// Publish offers every message, in order, to every subscriber, in
	// subscription order. It returns once all deliveries were attempted.
	Publish(ctx context.Context, messages []Message)
}

var _ MessageDispatcher = (*SynchronousDispatcher)(nil)

// SynchronousDispatcher delivers messages on the publishing goroutine.
//
// A consumer that returns an error or panics is logged and skipped; it never
// stops delivery to later consumers or of later messages, and nothing is
// retried.
type SynchronousDispatcher struct {
	log         *slog.Logger
	mu          sync.RWMutex
	subscribers []MessageConsumer
}

// NewSynchronousDispatcher creates a dispatcher seeded with consumers.
// A nil log falls back to slog.Default().
//
// Panics if any consumer is nil.
func NewSynchronousDispatcher(log *slog.Logger, consumers ...MessageConsumer) *SynchronousDispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &SynchronousDispatcher{
		log: log.With(slog.String("component", "dispatcher")),
	}
	for _, c := range consumers {
		d.Subscribe(c)
	}
	return d
}

// Subscribe implements MessageDispatcher. Panics if consumer is nil.
func (d *SynchronousDispatcher) Subscribe(consumer MessageConsumer) {
	if consumer == nil {
		panic("cannot subscribe nil consumer")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, consumer)
}

// Publish implements MessageDispatcher.
func (d *SynchronousDispatcher) Publish(ctx context.Context, messages []Message) {
	d.mu.RLock()
	subscribers := make([]MessageConsumer, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	for _, msg := range messages {
		msgCtx := WithMessage(ctx, msg)
		for i, consumer := range subscribers {
			if err := deliver(msgCtx, consumer, msg); err != nil {
				d.log.WarnContext(msgCtx, "consumer failed",
					slog.Int("consumer", i),
					slog.String("stream_id", msg.StreamID.String()),
					slog.Uint64("version", msg.Version),
					slog.String("event_type", msg.EventType()),
					slog.Any("error", err),
				)
			}
		}
	}
}

func deliver(ctx context.Context, consumer MessageConsumer, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panicked: %v", r)
		}
	}()
	return consumer.Handle(ctx, msg)
}
