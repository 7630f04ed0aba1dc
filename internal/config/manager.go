package config

import (
	"hash/fnv"
	"os"
	"sync"
	"time"

	logx "businesshours/pkg/logx"
)

// Manager holds the current config and fans reloads out to subscribers.
type Manager struct {
	path     string
	log      logx.Logger
	validate func(*Config) error
	debounce time.Duration

	mu      sync.RWMutex
	current *Config
	digest  uint64

	subMu sync.Mutex
	subs  map[chan *Config]struct{}
}

func NewManager(path string) *Manager {
	return &Manager{
		path:     path,
		log:      logx.Nop(),
		validate: Validate,
		debounce: 250 * time.Millisecond,
		subs:     map[chan *Config]struct{}{},
	}
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

// SetValidator replaces Validate as the check run by Load and every reload.
// nil disables validation.
func (m *Manager) SetValidator(fn func(*Config) error) { m.validate = fn }

// Parse reads and decodes the file without validating or committing it.
func (m *Manager) Parse() (*Config, error) {
	cfg, _, err := m.read()
	return cfg, err
}

func (m *Manager) read() (*Config, uint64, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, 0, err
	}
	cfg, err := Decode(m.path, b)
	if err != nil {
		return nil, 0, err
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return cfg, h.Sum64(), nil
}

// Load reads, validates and commits the file.
func (m *Manager) Load() (*Config, error) {
	cfg, digest, err := m.read()
	if err != nil {
		return nil, err
	}
	if m.validate != nil {
		if err := m.validate(cfg); err != nil {
			return nil, err
		}
	}
	m.commit(cfg, digest)
	return cfg, nil
}

func (m *Manager) commit(cfg *Config, digest uint64) {
	m.mu.Lock()
	m.current, m.digest = cfg, digest
	m.mu.Unlock()
}

// Get returns the last committed config; nil before Load.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe returns a channel receiving every committed reload. When the
// subscriber falls behind, older pending configs are replaced by newer ones.
func (m *Manager) Subscribe(buffer int) chan *Config {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Config, buffer)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

// Unsubscribe closes ch. Unknown channels are ignored.
func (m *Manager) Unsubscribe(ch chan *Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
}

func (m *Manager) publish(cfg *Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		for sent := false; !sent; {
			select {
			case ch <- cfg:
				sent = true
			default:
				// full: discard the oldest pending config
				select {
				case <-ch:
				default:
				}
			}
		}
	}
}
