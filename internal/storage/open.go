package storage

import (
	"context"
	"errors"
	"strings"

	logx "businesshours/pkg/logx"
)

// Store is the persistence API used by the watch daemon and the CLI.
type Store interface {
	AppendTransition(ctx context.Context, t Transition) error
	// RecentTransitions returns up to limit transitions, newest first.
	// An empty schedule matches all schedules.
	RecentTransitions(ctx context.Context, schedule string, limit int) ([]Transition, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
