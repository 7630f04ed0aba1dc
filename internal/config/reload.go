package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	logx "businesshours/pkg/logx"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file on change until ctx is done. The parent directory is
// watched so that editors replacing the file by rename are seen. Bursts of
// events within the debounce window cause one reload.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer w.Close()

	dir, name := filepath.Dir(m.path), filepath.Base(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config watch %s: %w", dir, err)
	}
	m.log.Debug("config watcher started", logx.String("path", m.path))

	pending := time.NewTimer(time.Hour)
	pending.Stop()
	defer pending.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("config watch: event channel closed")
			}
			if filepath.Base(ev.Name) == name && !ev.Has(fsnotify.Chmod) {
				pending.Reset(m.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("config watch: error channel closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				pending.Reset(m.debounce)
				continue
			}
			m.log.Warn("config watch error", logx.Err(err))
		case <-pending.C:
			m.reload()
		}
	}
}

// reload commits and publishes the file if its bytes changed and it validates.
// A broken file keeps the previous config in place.
func (m *Manager) reload() {
	cfg, digest, err := m.read()
	if err != nil {
		m.log.Warn("config reload failed", logx.String("path", m.path), logx.Err(err))
		return
	}
	m.mu.RLock()
	same := digest == m.digest
	m.mu.RUnlock()
	if same {
		m.log.Debug("config unchanged", logx.String("path", m.path))
		return
	}
	if m.validate != nil {
		if err := m.validate(cfg); err != nil {
			m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
			return
		}
	}
	m.commit(cfg, digest)
	m.publish(cfg)
	m.log.Info("config reloaded", logx.String("path", m.path), logx.String("digest", fmt.Sprintf("%016x", digest)))
}
