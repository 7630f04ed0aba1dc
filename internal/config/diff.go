package config

import (
	logx "businesshours/pkg/logx"
	"reflect"
	"strings"
)

// ScheduleChanges lists schedule names by kind of change between two configs.
type ScheduleChanges struct {
	Added   []string
	Removed []string
	Changed []string
}

func (c ScheduleChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// SummarizeChange returns the changed top-level sections, the schedule-level
// diff, and structured fields suitable for a single reload log line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, ScheduleChanges, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	var sections []string
	fields := make([]logx.Field, 0, 8)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		sections = append(sections, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Watch, newCfg.Watch) {
		sections = append(sections, "watch")
		fields = append(fields,
			logx.Bool("watch.enabled", newCfg.Watch.Enabled),
			logx.String("watch.timezone", strings.TrimSpace(newCfg.Watch.Timezone)),
		)
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		sections = append(sections, "storage")
		if newCfg.Storage != nil {
			fields = append(fields, logx.String("storage.driver", newCfg.Storage.Driver))
		}
	}

	var sc ScheduleChanges
	for _, name := range ScheduleNames(newCfg) {
		prev, ok := oldCfg.Schedules[name]
		switch {
		case !ok:
			sc.Added = append(sc.Added, name)
		case ruleText(prev.Rule) != ruleText(newCfg.Schedules[name].Rule):
			sc.Changed = append(sc.Changed, name)
		}
	}
	for _, name := range ScheduleNames(oldCfg) {
		if _, ok := newCfg.Schedules[name]; !ok {
			sc.Removed = append(sc.Removed, name)
		}
	}
	if !sc.Empty() {
		sections = append(sections, "schedules")
		fields = append(fields,
			logx.Strs("schedules.added", sc.Added),
			logx.Strs("schedules.removed", sc.Removed),
			logx.Strs("schedules.changed", sc.Changed),
		)
	}
	return sections, sc, fields
}

func ruleText(r *string) string {
	if r == nil {
		return "\x00"
	}
	return *r
}
