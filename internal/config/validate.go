package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"businesshours/internal/storage"
	"businesshours/pkg/businesshours"
	logx "businesshours/pkg/logx"
)

// Compile parses every schedule rule. Errors name the offending schedule and
// are joined so a single reload reports all of them.
func Compile(cfg *Config) (map[string]*businesshours.BusinessHours, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	out := make(map[string]*businesshours.BusinessHours, len(cfg.Schedules))
	var errs []error
	for _, name := range ScheduleNames(cfg) {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("schedules: empty schedule name"))
			continue
		}
		bh, err := businesshours.ParseNullable(cfg.Schedules[name].Rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("schedules.%s.rule: %w", name, err))
			continue
		}
		out[name] = bh
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks everything Watch() must accept before publishing a reload.
func Validate(cfg *Config) error {
	if _, err := Compile(cfg); err != nil {
		return err
	}
	if _, err := cfg.Watch.Location(); err != nil {
		return fmt.Errorf("watch.timezone: %w", err)
	}
	if _, err := cfg.StorageOptions(); err != nil {
		return err
	}
	return nil
}

// ScheduleNames returns schedule names in stable order.
func ScheduleNames(cfg *Config) []string {
	names := make([]string, 0, len(cfg.Schedules))
	for name := range cfg.Schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File:    logx.FileConfig{Enabled: c.Logging.File.Enabled, Path: c.Logging.File.Path},
	}
}

// StorageOptions maps the storage section; an omitted section disables storage.
func (c *Config) StorageOptions() (storage.Config, error) {
	if c.Storage == nil {
		return storage.Config{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "none", "file", "sqlite", "sqlite3":
	default:
		return storage.Config{}, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	bt, err := parseDuration("storage.busy_timeout", c.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{Driver: c.Storage.Driver, Path: c.Storage.Path, BusyTimeout: bt}, nil
}

// parseDuration accepts a blank value as zero.
func parseDuration(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}
