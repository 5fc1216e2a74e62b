package fixtures

import (
	"context"
	"sync"

	es "github.com/terraskye/eventcore"
	"github.com/terraskye/eventcore/messagestore/memory"
)

var _ es.MessageStore = (*StoreSpy)(nil)

// StoreSpy is a test double for MessageStore that records calls and can be
// configured to return specific results. Unless a hook is set, calls are
// forwarded to an in-memory store.
type StoreSpy struct {
	mu sync.Mutex

	// Hooks; when set they replace the default behavior.
	ExistsFn  func(ctx context.Context, streamID es.Identifier) (bool, error)
	LoadFn    func(ctx context.Context, streamID es.Identifier) ([]es.Message, error)
	AppendFn  func(ctx context.Context, streamID es.Identifier, messages []es.Message) error
	VersionFn func(ctx context.Context, streamID es.Identifier) (uint64, error)
	CloseFn   func() error

	// Call tracking
	ExistsCalls  int
	LoadCalls    int
	AppendCalls  int
	VersionCalls int
	CloseCalls   int

	LastAppendStreamID es.Identifier
	LastAppendMessages []es.Message

	next      es.MessageStore
	loadErr   error
	appendErr error
}

// NewStoreSpy creates a new StoreSpy backed by an empty in-memory store.
func NewStoreSpy() *StoreSpy {
	return &StoreSpy{next: memory.NewMessageStore()}
}

// WithMessages pre-populates the store. It panics if the batch is rejected.
func (s *StoreSpy) WithMessages(streamID es.Identifier, messages ...es.Message) *StoreSpy {
	if err := s.next.Append(context.Background(), streamID, messages); err != nil {
		panic(err)
	}
	return s
}

// WithEvents pre-populates the stream with events at versions 1..n.
func (s *StoreSpy) WithEvents(streamID es.Identifier, events ...es.Event) *StoreSpy {
	return s.WithMessages(streamID, MessagesFromEvents(streamID, events...)...)
}

// FailOnLoad configures Load to return err.
func (s *StoreSpy) FailOnLoad(err error) *StoreSpy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	return s
}

// FailOnAppend configures Append to return err.
func (s *StoreSpy) FailOnAppend(err error) *StoreSpy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
	return s
}

func (s *StoreSpy) Exists(ctx context.Context, streamID es.Identifier) (bool, error) {
	s.mu.Lock()
	s.ExistsCalls++
	s.mu.Unlock()

	if s.ExistsFn != nil {
		return s.ExistsFn(ctx, streamID)
	}
	return s.next.Exists(ctx, streamID)
}

func (s *StoreSpy) Load(ctx context.Context, streamID es.Identifier) ([]es.Message, error) {
	s.mu.Lock()
	s.LoadCalls++
	loadErr := s.loadErr
	s.mu.Unlock()

	if s.LoadFn != nil {
		return s.LoadFn(ctx, streamID)
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return s.next.Load(ctx, streamID)
}

func (s *StoreSpy) Append(ctx context.Context, streamID es.Identifier, messages []es.Message) error {
	s.mu.Lock()
	s.AppendCalls++
	s.LastAppendStreamID = streamID
	s.LastAppendMessages = append([]es.Message(nil), messages...)
	appendErr := s.appendErr
	s.mu.Unlock()

	if s.AppendFn != nil {
		return s.AppendFn(ctx, streamID, messages)
	}
	if appendErr != nil {
		return appendErr
	}
	return s.next.Append(ctx, streamID, messages)
}

func (s *StoreSpy) Version(ctx context.Context, streamID es.Identifier) (uint64, error) {
	s.mu.Lock()
	s.VersionCalls++
	s.mu.Unlock()

	if s.VersionFn != nil {
		return s.VersionFn(ctx, streamID)
	}
	return s.next.Version(ctx, streamID)
}

func (s *StoreSpy) Close() error {
	s.mu.Lock()
	s.CloseCalls++
	s.mu.Unlock()

	if s.CloseFn != nil {
		return s.CloseFn()
	}
	return s.next.Close()
}

// Pre-built store scenarios.

// FailingStore returns a StoreSpy that fails on load and append.
func FailingStore(err error) *StoreSpy {
	return NewStoreSpy().FailOnLoad(err).FailOnAppend(err)
}

// ConflictingStore returns a StoreSpy whose first n appends report a version
// conflict at the first message of the batch. Later appends go through.
func ConflictingStore(n int) *StoreSpy {
	store := NewStoreSpy()
	remaining := n
	store.AppendFn = func(ctx context.Context, streamID es.Identifier, messages []es.Message) error {
		store.mu.Lock()
		conflict := remaining > 0
		if conflict {
			remaining--
		}
		store.mu.Unlock()

		if conflict && len(messages) > 0 {
			return &es.VersionConflictError{StreamID: streamID, Version: messages[0].Version}
		}
		return store.next.Append(ctx, streamID, messages)
	}
	return store
}
