package eventcore

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorStrings(t *testing.T) {
	id := MustParseIdentifier("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "AggregateNotFoundError",
			err:  &AggregateNotFoundError{Type: "Order", ID: id},
			want: "aggregate of type Order not found with id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "PersistenceError",
			err:  &PersistenceError{Type: "Order", ID: id, Err: errors.New("disk full")},
			want: "failed to persist aggregate of type Order with id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8: disk full",
		},
		{
			name: "StreamNotFoundError",
			err:  &StreamNotFoundError{StreamID: id},
			want: "stream not found with id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "VersionConflictError",
			err:  &VersionConflictError{StreamID: id, Version: 3},
			want: "a message with version 3 was already committed for stream with id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "StoreError",
			err:  WrapStoreError(errors.New("bad payload")),
			want: "message store error: bad payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMatching(t *testing.T) {
	id := NewIdentifier()
	conflict := &VersionConflictError{StreamID: id, Version: 2}
	persist := &PersistenceError{Type: "Order", ID: id, Err: conflict}

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"aggregate not found", &AggregateNotFoundError{Type: "Order", ID: id}, ErrAggregateNotFound, true},
		{"stream not found", &StreamNotFoundError{StreamID: id}, ErrStreamNotFound, true},
		{"stream is not aggregate", &StreamNotFoundError{StreamID: id}, ErrAggregateNotFound, false},
		{"conflict", conflict, ErrVersionConflict, true},
		{"persistence", persist, ErrPersistence, true},
		{"persistence wraps conflict", persist, ErrVersionConflict, true},
		{"wrapped twice", fmt.Errorf("outer: %w", persist), ErrVersionConflict, true},
		{"store error unwraps", WrapStoreError(ErrUnknownEventType), ErrUnknownEventType, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}

	var target *VersionConflictError
	if !errors.As(persist, &target) || target.Version != 2 {
		t.Errorf("errors.As did not reach the version conflict: %v", target)
	}
}

func TestErrorHelpers(t *testing.T) {
	id := NewIdentifier()

	if WrapStoreError(nil) != nil {
		t.Error("WrapStoreError(nil) must be nil")
	}
	if !IsNotFound(&StreamNotFoundError{StreamID: id}) {
		t.Error("IsNotFound(stream) = false")
	}
	if !IsNotFound(fmt.Errorf("load: %w", &AggregateNotFoundError{Type: "Order", ID: id})) {
		t.Error("IsNotFound(wrapped aggregate) = false")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("IsNotFound(boom) = true")
	}
	if !IsVersionConflict(&PersistenceError{Err: &VersionConflictError{StreamID: id, Version: 1}}) {
		t.Error("IsVersionConflict(persistence) = false")
	}
}
