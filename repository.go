package eventcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/trace"
)

// AggregateFactory returns a zero-state aggregate ready for replay.
type AggregateFactory func() Aggregate

// RepositoryOption configures a Repository.
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	now   func() time.Time
	retry func() backoff.BackOff
}

// WithClock overrides the clock used to timestamp persisted messages.
func WithClock(now func() time.Time) RepositoryOption {
	return func(o *repositoryOptions) { o.now = now }
}

// WithRetryStrategy sets the backoff used by Update when a persist runs into
// a version conflict. newBackOff is called once per Update. The default
// performs no retries.
//
// Usage:
//
//	repo := NewRepository(log, store, dispatcher, WithRetryStrategy(func() backoff.BackOff {
//	    return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
//	}))
func WithRetryStrategy(newBackOff func() backoff.BackOff) RepositoryOption {
	return func(o *repositoryOptions) { o.retry = newBackOff }
}

// Repository loads aggregates from a MessageStore and persists their pending
// events, publishing them through a MessageDispatcher once committed.
type Repository struct {
	log        *slog.Logger
	store      MessageStore
	dispatcher MessageDispatcher
	opts       repositoryOptions

	mu        sync.RWMutex
	factories map[string]AggregateFactory
}

// NewRepository creates a repository over store. A nil dispatcher is replaced
// by an empty SynchronousDispatcher; a nil log falls back to slog.Default().
func NewRepository(log *slog.Logger, store MessageStore, dispatcher MessageDispatcher, opts ...RepositoryOption) *Repository {
	if log == nil {
		log = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = NewSynchronousDispatcher(log)
	}

	options := repositoryOptions{
		now:   time.Now,
		retry: func() backoff.BackOff { return &backoff.StopBackOff{} },
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Repository{
		log:        log.With(slog.String("repo", fmt.Sprintf("%T", store))),
		store:      store,
		dispatcher: dispatcher,
		opts:       options,
		factories:  make(map[string]AggregateFactory),
	}
}

// Register makes aggregateType loadable by telling the repository how to
// build its zero value.
//
// Panics if aggregateType is empty, factory is nil or the type is already
// registered.
func (r *Repository) Register(aggregateType string, factory AggregateFactory) {
	if aggregateType == "" {
		panic("cannot register aggregate with empty type")
	}
	if factory == nil {
		panic(fmt.Sprintf("cannot register nil factory for aggregate: %s", aggregateType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[aggregateType]; exists {
		panic(fmt.Sprintf("aggregate already registered: %s", aggregateType))
	}
	r.factories[aggregateType] = factory
}

// RegisterAggregate registers T under the type name its zero value reports.
func RegisterAggregate[T Aggregate](r *Repository, newFn func() T) {
	r.Register(newFn().AggregateType(), func() Aggregate { return newFn() })
}

// StreamIDFor derives the stream id of an aggregate instance. The result only
// depends on its arguments, so it is stable across processes.
func StreamIDFor(aggregateType string, id Identifier) Identifier {
	return IdentifierFromSeed(fmt.Sprintf("%s:%s", aggregateType, id))
}

// Exists reports whether the aggregate has a stream in the store.
func (r *Repository) Exists(ctx context.Context, aggregateType string, id Identifier) (bool, error) {
	exists, err := r.store.Exists(ctx, StreamIDFor(aggregateType, id))
	if err != nil {
		return false, fmt.Errorf("check aggregate %s %s: %w", aggregateType, id, err)
	}
	return exists, nil
}

// Load rebuilds the aggregate by replaying its stream.
//
// Errors:
//   - *AggregateNotFoundError if the stream does not exist.
//   - ErrUnknownAggregateType if aggregateType was never registered.
//   - Any store error, wrapped with the aggregate coordinates.
func (r *Repository) Load(ctx context.Context, aggregateType string, id Identifier) (Aggregate, error) {
	streamID := StreamIDFor(aggregateType, id)

	ctx, span := tracer.Start(ctx, "Repository.Load",
		trace.WithAttributes(
			attrAggregateType.String(aggregateType),
			attrAggregateID.String(id.String()),
			attrStreamID.String(streamID.String()),
		),
	)
	defer span.End()

	exists, err := r.store.Exists(ctx, streamID)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("load aggregate %s %s: %w", aggregateType, id, err))
	}
	if !exists {
		return nil, spanError(span, &AggregateNotFoundError{Type: aggregateType, ID: id})
	}

	r.mu.RLock()
	factory, ok := r.factories[aggregateType]
	r.mu.RUnlock()
	if !ok {
		return nil, spanError(span, fmt.Errorf("load aggregate %s %s: %w", aggregateType, id, ErrUnknownAggregateType))
	}

	messages, err := r.store.Load(ctx, streamID)
	if err != nil {
		if errors.Is(err, ErrStreamNotFound) {
			return nil, spanError(span, &AggregateNotFoundError{Type: aggregateType, ID: id})
		}
		return nil, spanError(span, fmt.Errorf("load aggregate %s %s: %w", aggregateType, id, err))
	}

	events := make([]Event, len(messages))
	for i, msg := range messages {
		events[i] = msg.Event
	}
	span.SetAttributes(attrEventCount.Int(len(events)))

	agg := Reconstitute(factory, events)

	r.log.DebugContext(ctx, "loaded",
		slog.Group("agg",
			slog.String("type", aggregateType),
			slog.String("id", id.String()),
			slog.Uint64("version", agg.AggregateVersion()),
		),
	)

	return agg, nil
}

// LoadAs loads an aggregate and asserts its concrete type.
func LoadAs[T Aggregate](ctx context.Context, r *Repository, aggregateType string, id Identifier) (T, error) {
	var zero T
	agg, err := r.Load(ctx, aggregateType, id)
	if err != nil {
		return zero, err
	}
	typed, ok := agg.(T)
	if !ok {
		return zero, fmt.Errorf("load aggregate %s %s: loaded %T, want %T", aggregateType, id, agg, zero)
	}
	return typed, nil
}

// Persist appends the pending events of agg to its stream, commits the
// aggregate and publishes the new messages.
//
// Nothing happens when there are no pending events. Pending event i (0-based)
// is stored at version AggregateVersion() - len(pending) + 1 + i.
//
// On a store failure the error is returned as a *PersistenceError, the
// pending events are kept and nothing is published. Consumer failures during
// publishing are not reported here.
func (r *Repository) Persist(ctx context.Context, agg Aggregate, id Identifier) error {
	pending := agg.PendingEvents()
	if len(pending) == 0 {
		return nil
	}

	aggregateType := agg.AggregateType()
	streamID := StreamIDFor(aggregateType, id)

	ctx, span := tracer.Start(ctx, "Repository.Persist",
		trace.WithAttributes(
			attrAggregateType.String(aggregateType),
			attrAggregateID.String(id.String()),
			attrStreamID.String(streamID.String()),
			attrEventCount.Int(len(pending)),
		),
	)
	defer span.End()

	current := agg.AggregateVersion()
	if current < uint64(len(pending)) {
		err := fmt.Errorf("%w: version %d is lower than %d pending events", ErrInvalidMessageBatch, current, len(pending))
		return spanError(span, &PersistenceError{Type: aggregateType, ID: id, Err: err})
	}

	version := current - uint64(len(pending))
	timestamp := r.opts.now().Unix()

	messages := make([]Message, len(pending))
	for i, event := range pending {
		version++
		messages[i] = NewMessage(streamID, version, event, timestamp)
	}

	if err := r.store.Append(ctx, streamID, messages); err != nil {
		r.log.DebugContext(ctx, "persist failed",
			slog.String("type", aggregateType),
			slog.String("id", id.String()),
			slog.Any("error", err),
		)
		return spanError(span, &PersistenceError{Type: aggregateType, ID: id, Err: err})
	}

	agg.Commit()

	r.log.DebugContext(ctx, "persisted",
		slog.Group("agg",
			slog.String("type", aggregateType),
			slog.String("id", id.String()),
			slog.Uint64("version", current),
		),
		slog.Int("events", len(messages)),
	)

	r.dispatcher.Publish(ctx, messages)
	return nil
}

// Update loads the aggregate, applies fn and persists the result. When the
// persist hits a version conflict the whole cycle is retried according to
// the configured retry strategy. Errors from fn and all other failures are
// returned without retrying.
//
// Example Usage:
//
//	agg, err := repo.Update(ctx, "Order", id, func(a Aggregate) error {
//	    return a.(*Order).Ship()
//	})
func (r *Repository) Update(ctx context.Context, aggregateType string, id Identifier, fn func(agg Aggregate) error) (Aggregate, error) {
	var result Aggregate
	attempt := 0

	err := backoff.Retry(func() error {
		attempt++

		agg, err := r.Load(ctx, aggregateType, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := fn(agg); err != nil {
			return backoff.Permanent(fmt.Errorf("update aggregate %s %s: %w", aggregateType, id, err))
		}
		if err := r.Persist(ctx, agg, id); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				r.log.DebugContext(ctx, "version conflict, retrying",
					slog.String("type", aggregateType),
					slog.String("id", id.String()),
					slog.Int("attempt", attempt),
				)
				return err
			}
			return backoff.Permanent(err)
		}

		result = agg
		return nil
	}, backoff.WithContext(r.opts.retry(), ctx))
	if err != nil {
		return nil, err
	}
	return result, nil
}
