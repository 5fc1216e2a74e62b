package logging

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/terraskye/eventcore"
)

type storeLogger struct {
	logger *logrus.Entry
	next   eventcore.MessageStore
}

// WithStoreLogging wraps a MessageStore with logging functionality.
// It logs every append with its stream id and batch size, and logs failures
// of every operation. A missing stream is not logged as a failure.
func WithStoreLogging(logger *logrus.Entry, next eventcore.MessageStore) eventcore.MessageStore {
	return &storeLogger{
		logger: logger,
		next:   next,
	}
}

func (s *storeLogger) Exists(ctx context.Context, streamID eventcore.Identifier) (bool, error) {
	exists, err := s.next.Exists(ctx, streamID)
	if err != nil {
		s.logger.WithContext(ctx).Errorf("Exists failed: stream %s: %v", streamID, err)
	}
	return exists, err
}

func (s *storeLogger) Load(ctx context.Context, streamID eventcore.Identifier) ([]eventcore.Message, error) {
	messages, err := s.next.Load(ctx, streamID)
	if err != nil && !eventcore.IsNotFound(err) {
		s.logger.WithContext(ctx).Errorf("Load failed: stream %s: %v", streamID, err)
	}
	return messages, err
}

func (s *storeLogger) Append(ctx context.Context, streamID eventcore.Identifier, messages []eventcore.Message) error {
	l := s.logger.WithContext(ctx)
	l.Infof("Append: stream %s (%d messages)", streamID, len(messages))

	err := s.next.Append(ctx, streamID, messages)
	if err != nil {
		l.Errorf("Append failed: stream %s: %v", streamID, err)
	}
	return err
}

func (s *storeLogger) Version(ctx context.Context, streamID eventcore.Identifier) (uint64, error) {
	version, err := s.next.Version(ctx, streamID)
	if err != nil && !eventcore.IsNotFound(err) {
		s.logger.WithContext(ctx).Errorf("Version failed: stream %s: %v", streamID, err)
	}
	return version, err
}

func (s *storeLogger) Close() error {
	return s.next.Close()
}
