package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/terraskye/eventcore"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const defaultTable = "eventstore"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var _ eventcore.MessageStore = (*MessageStore)(nil)

// MessageStore is a durable eventcore.MessageStore backed by one SQLite table.
type MessageStore struct {
	db       *sql.DB
	ownsDB   bool
	table    string
	registry *eventcore.EventRegistry

	insertSQL  string
	existsSQL  string
	loadSQL    string
	versionSQL string
}

// Option configures a MessageStore.
type Option func(*MessageStore)

// WithTable stores messages in the named table instead of "eventstore".
func WithTable(name string) Option {
	return func(s *MessageStore) { s.table = name }
}

// WithRegistry decodes events with registry instead of eventcore.DefaultRegistry.
func WithRegistry(registry *eventcore.EventRegistry) Option {
	return func(s *MessageStore) { s.registry = registry }
}

// New wraps an already opened database and creates the message table if it
// does not exist yet. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*MessageStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}

	s := &MessageStore{
		db:       db,
		table:    defaultTable,
		registry: eventcore.DefaultRegistry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if !tableNamePattern.MatchString(s.table) {
		return nil, fmt.Errorf("invalid table name %q", s.table)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}

	s.insertSQL = fmt.Sprintf(`INSERT INTO %s (stream_id, version, payload, timestamp, type) VALUES (?, ?, ?, ?, ?)`, s.table)
	s.existsSQL = fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE stream_id = ?`, s.table)
	s.loadSQL = fmt.Sprintf(`SELECT stream_id, version, payload, timestamp, type FROM %s WHERE stream_id = ? ORDER BY version ASC`, s.table)
	s.versionSQL = fmt.Sprintf(`SELECT MAX(version) FROM %s WHERE stream_id = ?`, s.table)

	schema := strings.ReplaceAll(schemaSQL, "{{table}}", s.table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return s, nil
}

// Open opens the database described by cfg and wraps it. The returned store
// owns the connection and closes it on Close.
func Open(ctx context.Context, cfg Config, opts ...Option) (*MessageStore, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverModernc
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	// SQLite allows a single writer; one connection keeps transactions from
	// tripping over each other with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.Table != "" {
		opts = append([]Option{WithTable(cfg.Table)}, opts...)
	}

	s, err := New(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// Close closes the database if the store opened it.
func (s *MessageStore) Close() error {
	if s == nil || s.db == nil || !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func (s *MessageStore) Exists(ctx context.Context, streamID eventcore.Identifier) (bool, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.existsSQL, streamID.String()).Scan(&count); err != nil {
		return false, fmt.Errorf("check stream %s: %w", streamID, err)
	}
	return count > 0, nil
}

func (s *MessageStore) Load(ctx context.Context, streamID eventcore.Identifier) ([]eventcore.Message, error) {
	rows, err := s.db.QueryContext(ctx, s.loadSQL, streamID.String())
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", streamID, err)
	}
	defer rows.Close()

	var messages []eventcore.Message
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.streamID, &r.version, &r.payload, &r.timestamp, &r.eventType); err != nil {
			return nil, fmt.Errorf("load stream %s: scan: %w", streamID, err)
		}
		msg, err := s.decode(r)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load stream %s: %w", streamID, err)
	}

	if len(messages) == 0 {
		return nil, &eventcore.StreamNotFoundError{StreamID: streamID}
	}
	return messages, nil
}

// Append inserts every message in a single transaction. A unique-constraint
// violation on (stream_id, version) becomes *eventcore.VersionConflictError;
// any other database error is returned as is.
func (s *MessageStore) Append(ctx context.Context, streamID eventcore.Identifier, messages []eventcore.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := eventcore.ValidateBatch(streamID, messages); err != nil {
		return err
	}

	// Encode before opening the transaction.
	payloads := make([]string, len(messages))
	for i, msg := range messages {
		data, err := json.Marshal(msg.Event.Serialize())
		if err != nil {
			return fmt.Errorf("encode %s at version %d: %w", msg.EventType(), msg.Version, err)
		}
		payloads[i] = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, msg := range messages {
		if _, err := tx.ExecContext(ctx, s.insertSQL,
			streamID.String(),
			int64(msg.Version),
			payloads[i],
			msg.Timestamp,
			msg.EventType(),
		); err != nil {
			if isUniqueViolation(err) {
				return &eventcore.VersionConflictError{StreamID: streamID, Version: msg.Version}
			}
			return err
		}
	}

	return tx.Commit()
}

func (s *MessageStore) Version(ctx context.Context, streamID eventcore.Identifier) (uint64, error) {
	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, s.versionSQL, streamID.String()).Scan(&version); err != nil {
		return 0, fmt.Errorf("stream version %s: %w", streamID, err)
	}
	if !version.Valid {
		return 0, &eventcore.StreamNotFoundError{StreamID: streamID}
	}
	return uint64(version.Int64), nil
}

type row struct {
	streamID  string
	version   int64
	payload   string
	timestamp int64
	eventType string
}

func (s *MessageStore) decode(r row) (eventcore.Message, error) {
	streamID, err := eventcore.ParseIdentifier(r.streamID)
	if err != nil {
		return eventcore.Message{}, eventcore.WrapStoreError(err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.payload), &payload); err != nil {
		return eventcore.Message{}, eventcore.WrapStoreError(
			fmt.Errorf("cannot unmarshal event %q at version %d: %w", r.eventType, r.version, err),
		)
	}

	event, err := s.registry.Deserialize(r.eventType, payload)
	if err != nil {
		return eventcore.Message{}, eventcore.WrapStoreError(
			fmt.Errorf("cannot create event %q at version %d: %w", r.eventType, r.version, err),
		)
	}

	return eventcore.NewMessage(streamID, uint64(r.version), event, r.timestamp), nil
}
