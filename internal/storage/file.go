package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "businesshours/pkg/logx"
)

// fileStore appends one JSON object per transition to
// <dir>/<base>.transitions.jsonl, where base is the configured path
// without its extension.
type fileStore struct {
	log  logx.Logger
	path string

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

type fileRecord struct {
	At       time.Time `json:"at"`
	Schedule string    `json:"schedule"`
	Kind     Kind      `json:"kind"`
	Cron     string    `json:"cron,omitempty"`
}

func journalPath(path string) string {
	base := filepath.Base(path)
	return filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base))+".transitions.jsonl")
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	full := journalPath(strings.TrimSpace(cfg.Path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.Debug("file store opened", logx.String("path", full))
	return &fileStore{log: log, path: full, f: f, enc: json.NewEncoder(f)}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f, s.enc = nil, nil
	return err
}

func (s *fileStore) AppendTransition(_ context.Context, t Transition) error {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil {
		return ErrDisabled
	}
	return s.enc.Encode(fileRecord{At: t.At.UTC(), Schedule: t.Schedule, Kind: t.Kind, Cron: t.Cron})
}

// RecentTransitions scans the whole journal keeping the last limit matches
// in a ring, then returns them newest first.
func (s *fileStore) RecentTransitions(ctx context.Context, schedule string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]Transition, limit)
	n := 0
	dec := json.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec fileRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A torn final line is the only expected corruption; stop there.
			s.log.Warn("transition journal truncated", logx.String("path", s.path), logx.Err(err))
			break
		}
		if schedule != "" && rec.Schedule != schedule {
			continue
		}
		ring[n%limit] = Transition{At: rec.At, Schedule: rec.Schedule, Kind: rec.Kind, Cron: rec.Cron}
		n++
	}

	count := min(n, limit)
	out := make([]Transition, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, ring[(n-i)%limit])
	}
	return out, nil
}
