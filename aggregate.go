package eventcore

// Aggregate is the interface that all event-sourced aggregates must implement.
//
// Concrete aggregates embed AggregateBase, which supplies everything except
// AggregateType. The unexported replay method means the interface can only
// be satisfied through that embedding.
type Aggregate interface {

	// AggregateType returns the stable type name used to derive stream ids.
	AggregateType() string

	// AggregateVersion returns the number of events ever applied, including
	// pending ones.
	AggregateVersion() uint64

	// PendingEvents returns the events recorded since the last Commit, in
	// the order they were recorded.
	PendingEvents() []Event

	// Commit clears the pending events. The version is left untouched.
	Commit()

	replay(event Event)
}

// AggregateBase tracks the version and pending events of an aggregate and
// routes each applied event to the handler registered for its kind.
type AggregateBase struct {
	version uint64
	pending []Event
	apply   func(Event)
}

// Handle registers the per-kind handlers of the embedding aggregate. It is
// usually called once from the aggregate's constructor.
//
// Example Usage:
//
//	func NewOrder() *Order {
//	    o := &Order{}
//	    o.Handle(
//	        OnEvent(o.onCreated),
//	        OnEvent(o.onItemAdded),
//	    )
//	    return o
//	}
func (a *AggregateBase) Handle(appliers ...EventApplier) {
	a.apply = Hydrate(appliers...)
}

// AggregateVersion implements the AggregateVersion method of the Aggregate interface.
func (a *AggregateBase) AggregateVersion() uint64 {
	return a.version
}

// PendingEvents implements the PendingEvents method of the Aggregate interface.
func (a *AggregateBase) PendingEvents() []Event {
	out := make([]Event, len(a.pending))
	copy(out, a.pending)
	return out
}

// Commit implements the Commit method of the Aggregate interface.
func (a *AggregateBase) Commit() {
	a.pending = nil
}

// Record applies event to the aggregate and queues it for persistence.
// It is meant to be called from the aggregate's own business methods.
func (a *AggregateBase) Record(event Event) {
	a.replay(event)
	a.pending = append(a.pending, event)
}

func (a *AggregateBase) replay(event Event) {
	a.version++
	if a.apply != nil {
		a.apply(event)
	}
}

// Reconstitute builds a fresh aggregate with newFn and replays events on it
// in order. Replayed events never become pending.
func Reconstitute[T Aggregate](newFn func() T, events []Event) T {
	agg := newFn()
	for _, event := range events {
		agg.replay(event)
	}
	return agg
}
