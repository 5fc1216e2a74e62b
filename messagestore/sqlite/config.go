package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DriverModernc is the pure-Go driver name registered by modernc.org/sqlite.
	DriverModernc = "sqlite"
	// DriverMattn is the cgo driver name registered by mattn/go-sqlite3.
	DriverMattn = "sqlite3"
)

// Config describes where the durable message store lives.
type Config struct {
	Path        string        `env:"EVENTCORE_SQLITE_PATH" envDefault:"eventstore.db"`
	Table       string        `env:"EVENTCORE_SQLITE_TABLE" envDefault:"eventstore"`
	Driver      string        `env:"EVENTCORE_SQLITE_DRIVER" envDefault:"sqlite"`
	BusyTimeout time.Duration `env:"EVENTCORE_SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
}

// ConfigFromEnv loads a Config from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN builds the driver-specific data source name for cfg.
func (c Config) DSN() (string, error) {
	path := strings.TrimSpace(c.Path)
	if path == "" {
		return "", fmt.Errorf("storage path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	busy := c.BusyTimeout.Milliseconds()
	q := url.Values{}

	switch c.Driver {
	case DriverModernc, "":
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
		q.Set("_txlock", "immediate")
	case DriverMattn:
		q.Set("_busy_timeout", fmt.Sprintf("%d", busy))
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
		q.Set("_txlock", "immediate")
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", c.Driver)
	}

	return "file:" + path + "?" + q.Encode(), nil
}
