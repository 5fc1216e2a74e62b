package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/terraskye/eventcore"
)

var _ eventcore.MessageStore = (*MessageStore)(nil)

type stream struct {
	head     uint64
	messages map[uint64]eventcore.Message
}

// MessageStore keeps every stream in process memory. It is safe for
// concurrent use; a batch is validated against the stream as a whole before
// anything is inserted, so a rejected append leaves no trace.
type MessageStore struct {
	mu      sync.RWMutex
	streams map[eventcore.Identifier]*stream
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		streams: make(map[eventcore.Identifier]*stream),
	}
}

func (m *MessageStore) Exists(ctx context.Context, streamID eventcore.Identifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.streams[streamID]
	return ok, nil
}

func (m *MessageStore) Load(ctx context.Context, streamID eventcore.Identifier) ([]eventcore.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s, ok := m.streams[streamID]
	if !ok {
		m.mu.RUnlock()
		return nil, &eventcore.StreamNotFoundError{StreamID: streamID}
	}
	out := make([]eventcore.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		out = append(out, msg)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (m *MessageStore) Append(ctx context.Context, streamID eventcore.Identifier, messages []eventcore.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := eventcore.ValidateBatch(streamID, messages); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.streams[streamID]
	if ok {
		// We optimistically lock streams: of two writers that diverge from a
		// common version, only the first one to get here is accepted.
		for _, msg := range messages {
			if _, taken := s.messages[msg.Version]; taken {
				return &eventcore.VersionConflictError{StreamID: streamID, Version: msg.Version}
			}
		}
	} else {
		s = &stream{messages: make(map[uint64]eventcore.Message, len(messages))}
		m.streams[streamID] = s
	}

	for _, msg := range messages {
		s.messages[msg.Version] = msg
		if msg.Version > s.head {
			s.head = msg.Version
		}
	}
	return nil
}

func (m *MessageStore) Version(ctx context.Context, streamID eventcore.Identifier) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.streams[streamID]
	if !ok {
		return 0, &eventcore.StreamNotFoundError{StreamID: streamID}
	}
	return s.head, nil
}

// Close drops every stream.
func (m *MessageStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams = make(map[eventcore.Identifier]*stream)
	return nil
}
