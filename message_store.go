package eventcore

import (
	"context"
	"fmt"
)

// MessageStore defines the contract for an append-only message log keyed by
// stream id.
//
// Implementations must guarantee:
//   - Messages of a stream are returned in ascending version order.
//   - (streamID, version) is unique across the store; an append that would
//     break this fails with a *VersionConflictError.
//   - Append is atomic: either every message of the batch is stored or none is.
//   - Concurrent appends racing on the same version: exactly one succeeds.
type MessageStore interface {
	// Exists reports whether anything was ever appended to the stream.
	Exists(ctx context.Context, streamID Identifier) (bool, error)

	// Load returns every message of the stream ordered by version.
	//
	// Errors:
	//   - *StreamNotFoundError if the stream was never appended to.
	//   - Any store-specific read error.
	Load(ctx context.Context, streamID Identifier) ([]Message, error)

	// Append stores messages at their own versions. An empty batch is a no-op.
	//
	// Errors:
	//   - *VersionConflictError for the first version already taken.
	//   - Any other storage failure, returned unchanged.
	Append(ctx context.Context, streamID Identifier, messages []Message) error

	// Version returns the highest committed version of the stream.
	//
	// Errors:
	//   - *StreamNotFoundError if the stream was never appended to.
	Version(ctx context.Context, streamID Identifier) (uint64, error)

	// Close releases any resources held by the store. It should be idempotent.
	Close() error
}

// ValidateBatch checks that every message of a batch targets streamID, carries
// an event and a positive version, and that no version repeats inside the batch.
func ValidateBatch(streamID Identifier, messages []Message) error {
	seen := make(map[uint64]struct{}, len(messages))
	for i, msg := range messages {
		if msg.StreamID != streamID {
			return fmt.Errorf(
				"append to stream %s: %w: message %d has different stream id %s",
				streamID, ErrInvalidMessageBatch, i, msg.StreamID,
			)
		}
		if msg.Version == 0 {
			return fmt.Errorf("append to stream %s: %w: message %d has version 0", streamID, ErrInvalidMessageBatch, i)
		}
		if msg.Event == nil {
			return fmt.Errorf("append to stream %s: %w: message %d has no event", streamID, ErrInvalidMessageBatch, i)
		}
		if _, dup := seen[msg.Version]; dup {
			return &VersionConflictError{StreamID: streamID, Version: msg.Version}
		}
		seen[msg.Version] = struct{}{}
	}
	return nil
}
