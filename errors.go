package eventcore

import (
	"errors"
	"fmt"
)

var (
	ErrAggregateNotFound    = errors.New("aggregate not found")
	ErrPersistence          = errors.New("failed to persist aggregate")
	ErrStreamNotFound       = errors.New("stream not found")
	ErrVersionConflict      = errors.New("version conflict")
	ErrUnknownEventType     = errors.New("unknown event type")
	ErrUnknownAggregateType = errors.New("unknown aggregate type")
	ErrInvalidMessageBatch  = errors.New("invalid message batch")
)

// AggregateNotFoundError is returned when loading an aggregate whose stream
// has never been appended to.
type AggregateNotFoundError struct {
	Type string
	ID   Identifier
}

func (e *AggregateNotFoundError) Error() string {
	return fmt.Sprintf("aggregate of type %s not found with id: %s", e.Type, e.ID)
}

func (e *AggregateNotFoundError) Is(target error) bool {
	return target == ErrAggregateNotFound
}

// PersistenceError wraps any store failure raised while persisting an
// aggregate. The cause stays reachable through errors.Is / errors.As.
type PersistenceError struct {
	Type string
	ID   Identifier
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist aggregate of type %s with id: %s: %v", e.Type, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// StreamNotFoundError is returned by a MessageStore when the stream does not exist.
type StreamNotFoundError struct {
	StreamID Identifier
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("stream not found with id: %s", e.StreamID)
}

func (e *StreamNotFoundError) Is(target error) bool {
	return target == ErrStreamNotFound
}

// VersionConflictError reports an optimistic concurrency violation: a message
// already exists at (StreamID, Version).
type VersionConflictError struct {
	StreamID Identifier
	Version  uint64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("a message with version %d was already committed for stream with id: %s", e.Version, e.StreamID)
}

func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// StoreError marks a failure inside a store that is not a storage-engine error,
// such as a payload that can no longer be decoded.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("message store error: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func WrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}

// IsNotFound reports whether err means a stream or aggregate does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStreamNotFound) || errors.Is(err, ErrAggregateNotFound)
}

// IsVersionConflict reports whether err is, or wraps, an optimistic concurrency violation.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
