// Package kvstore provides the durable client-local key-value slots used for
// reminder state.
//
// Driver values:
//   - "sqlite": SQLite database file (modernc.org/sqlite)
//   - "file":   a single JSON document rewritten on every Put
package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("kvstore closed")

// Config configures the store.
type Config struct {
	Driver string
	Path   string
}

// Store holds string values under string keys.
type Store interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log *logrus.Entry) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("kvstore path is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg.Path, log)
	case "file":
		return openFile(cfg.Path, log)
	default:
		return nil, errors.New("unknown kvstore driver: " + driver)
	}
}
