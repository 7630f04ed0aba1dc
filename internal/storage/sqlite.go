package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "businesshours/pkg/logx"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var schema string

const defaultBusyTimeout = 5 * time.Second

type sqliteStore struct {
	db     *sql.DB
	insert *sql.Stmt
	log    logx.Logger
}

// sqliteDSN sets pragmas through the modernc DSN so every pooled connection
// gets them, not only the first.
func sqliteDSN(path string, busy time.Duration) string {
	if busy <= 0 {
		busy = defaultBusyTimeout
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(path, cfg.BusyTimeout))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate %s: %w", path, err)
	}
	insert, err := db.PrepareContext(ctx, `INSERT INTO transitions(at_ms, schedule, kind, cron) VALUES(?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("sqlite store opened", logx.String("path", path))
	return &sqliteStore{db: db, insert: insert, log: log}, nil
}

func (s *sqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	_ = s.insert.Close()
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *sqliteStore) AppendTransition(ctx context.Context, t Transition) error {
	if s.db == nil {
		return ErrDisabled
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}
	_, err := s.insert.ExecContext(ctx, t.At.UnixMilli(), t.Schedule, string(t.Kind), t.Cron)
	return err
}

func (s *sqliteStore) RecentTransitions(ctx context.Context, schedule string, limit int) ([]Transition, error) {
	if s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	query := `SELECT at_ms, schedule, kind, cron FROM transitions`
	args := []any{}
	if schedule != "" {
		query += ` WHERE schedule = ?`
		args = append(args, schedule)
	}
	query += ` ORDER BY at_ms DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			ms   int64
			kind string
			t    Transition
		)
		if err := rows.Scan(&ms, &t.Schedule, &kind, &t.Cron); err != nil {
			return nil, err
		}
		t.At = time.UnixMilli(ms).UTC()
		t.Kind = Kind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}
