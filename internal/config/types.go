package config

import (
	"strings"
	"time"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`
	Watch   WatchConfig   `json:"watch"`

	// Storage is optional; omitted means transitions are only logged.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Schedules maps a schedule name to its rule.
	Schedules map[string]ScheduleConfig `json:"schedules"`
}

// ScheduleConfig is one named business-hours rule.
//
// Rule is a pointer so that an omitted key is reported as a missing rule,
// while an explicit "" means always open.
type ScheduleConfig struct {
	Rule        *string `json:"rule"`
	Description string  `json:"description,omitempty"`
}

// WatchConfig controls the transition daemon.
//
// Defaults (when fields are omitted/zero):
//   - timezone: local time
//   - preview: 3 upcoming firings logged per job at debug level
type WatchConfig struct {
	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone,omitempty"` // IANA TZ, e.g. "Europe/Paris"
	Preview  int    `json:"preview,omitempty"`
}

// Location resolves the configured timezone.
func (w WatchConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(w.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

func (w WatchConfig) PreviewOrDefault() int {
	if w.Preview <= 0 {
		return 3
	}
	return w.Preview
}

// StorageConfig controls the transition journal.
//
// Example:
//
//	storage: { driver: sqlite, path: ./data/bhours.db, busy_timeout: 5s }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
