package businesshours

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"slices"
	"strings"
	"time"
)

// Forever is what distance queries return when no boundary will ever come:
// an always-open schedule never opens and never closes.
const Forever int64 = math.MaxInt64

// BusinessHours is a parsed weekly schedule. It is immutable once built.
type BusinessHours struct {
	source    string
	intervals []Interval
}

// AlwaysOpen covers the whole week.
func AlwaysOpen() *BusinessHours {
	return &BusinessHours{intervals: []Interval{FullWeek}}
}

// Parse builds a schedule from rule text. Blank text is always open.
func Parse(rule string) (*BusinessHours, error) {
	return ParseNullable(&rule)
}

// ParseNullable is Parse for callers whose rule may be absent; nil yields
// ErrNullInput.
func ParseNullable(rule *string) (*BusinessHours, error) {
	if rule == nil {
		return nil, ErrNullInput
	}
	if strings.TrimSpace(*rule) == "" {
		bh := AlwaysOpen()
		bh.source = *rule
		return bh, nil
	}
	clauses, err := ParseClauses(rule)
	if err != nil {
		return nil, err
	}
	return &BusinessHours{source: *rule, intervals: normalize(materialize(clauses))}, nil
}

// MustParse is Parse that panics on error. Meant for literals.
func MustParse(rule string) *BusinessHours {
	bh, err := Parse(rule)
	if err != nil {
		panic(err)
	}
	return bh
}

// IsAlwaysOpen reports whether the schedule covers the whole week, whatever
// rule produced it.
func (b *BusinessHours) IsAlwaysOpen() bool {
	return len(b.intervals) == 1 && b.intervals[0] == FullWeek
}

// Intervals returns a copy of the canonical interval set.
func (b *BusinessHours) Intervals() []Interval {
	return slices.Clone(b.intervals)
}

func (b *BusinessHours) IsOpen(t Timestamp) bool {
	m := MomentOf(t)
	for _, iv := range b.intervals {
		if iv.Contains(m) {
			return true
		}
	}
	return false
}

// TimeBeforeOpening is the time from t to the next interval start strictly
// after t, truncated to unit. Inside an open interval this is the opening
// that follows the current closing. Always-open schedules return Forever.
func (b *BusinessHours) TimeBeforeOpening(t Timestamp, unit time.Duration) int64 {
	secs, ok := b.secondsBefore(MomentOf(t), func(iv Interval) WeekMoment { return iv.Start })
	if !ok {
		return Forever
	}
	return inUnit(secs, unit)
}

// TimeBeforeClosing is the time from t to the next interval end strictly
// after t, truncated to unit. Always-open schedules return Forever.
func (b *BusinessHours) TimeBeforeClosing(t Timestamp, unit time.Duration) int64 {
	secs, ok := b.secondsBefore(MomentOf(t), func(iv Interval) WeekMoment { return iv.End })
	if !ok {
		return Forever
	}
	return inUnit(secs, unit)
}

// NextOpening returns the wall-clock instant of the next opening after t, or
// the zero time for an always-open schedule.
func (b *BusinessHours) NextOpening(t time.Time) time.Time {
	secs, ok := b.secondsBefore(MomentOf(t), func(iv Interval) WeekMoment { return iv.Start })
	if !ok {
		return time.Time{}
	}
	return t.Truncate(time.Second).Add(time.Duration(secs) * time.Second)
}

// NextClosing returns the wall-clock instant of the next closing after t, or
// the zero time for an always-open schedule.
func (b *BusinessHours) NextClosing(t time.Time) time.Time {
	secs, ok := b.secondsBefore(MomentOf(t), func(iv Interval) WeekMoment { return iv.End })
	if !ok {
		return time.Time{}
	}
	return t.Truncate(time.Second).Add(time.Duration(secs) * time.Second)
}

// secondsBefore is the smallest forward distance in (0, week] from m to a
// boundary picked from each interval.
func (b *BusinessHours) secondsBefore(m WeekMoment, boundary func(Interval) WeekMoment) (int, bool) {
	if len(b.intervals) == 0 || b.IsAlwaysOpen() {
		return 0, false
	}
	best := secondsPerWeek
	for _, iv := range b.intervals {
		d := week.forward(int(m), week.wrap(int(boundary(iv))))
		if d == 0 {
			d = secondsPerWeek
		}
		best = min(best, d)
	}
	return best, true
}

func inUnit(secs int, unit time.Duration) int64 {
	if unit <= 0 {
		unit = time.Second
	}
	return int64(time.Duration(secs) * time.Second / unit)
}

// String returns the rule text the schedule was parsed from.
func (b *BusinessHours) String() string { return b.source }

// Equal compares canonical interval sets, so differently written rules that
// cover the same time are equal.
func (b *BusinessHours) Equal(o *BusinessHours) bool {
	if b == nil || o == nil {
		return b == o
	}
	return slices.Equal(b.intervals, o.intervals)
}

// Hash is consistent with Equal.
func (b *BusinessHours) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, iv := range b.intervals {
		binary.BigEndian.PutUint32(buf[:4], uint32(iv.Start))
		binary.BigEndian.PutUint32(buf[4:], uint32(iv.End))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
