package businesshours

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
)

var week = cycle{lo: 0, size: secondsPerWeek}

// Timestamp is anything exposing wall-clock fields; time.Time satisfies it.
type Timestamp interface {
	Weekday() time.Weekday
	Hour() int
	Minute() int
	Second() int
}

// WeekMoment counts seconds since Monday 00:00:00, in [0, 604800).
type WeekMoment int

// MomentOf reduces t to its position within the week.
func MomentOf(t Timestamp) WeekMoment {
	iso := (int(t.Weekday())+6)%7 + 1
	return momentAt(iso, t.Hour(), t.Minute()) + WeekMoment(t.Second())
}

// momentAt builds the moment of a minute; day is ISO (1=Monday, 7=Sunday).
func momentAt(day, hour, minute int) WeekMoment {
	return WeekMoment((day-1)*secondsPerDay + hour*secondsPerHour + minute*secondsPerMinute)
}

// Weekday is the ISO day number, 1 (Monday) to 7 (Sunday).
func (m WeekMoment) Weekday() int { return int(m)/secondsPerDay + 1 }
func (m WeekMoment) Hour() int    { return int(m) % secondsPerDay / secondsPerHour }
func (m WeekMoment) Minute() int  { return int(m) % secondsPerHour / secondsPerMinute }
func (m WeekMoment) Second() int  { return int(m) % secondsPerMinute }

var dayAbbrev = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (m WeekMoment) String() string {
	m = WeekMoment(week.wrap(int(m)))
	s := fmt.Sprintf("%s %02d:%02d", dayAbbrev[m.Weekday()-1], m.Hour(), m.Minute())
	if sec := m.Second(); sec != 0 {
		s += fmt.Sprintf(":%02d", sec)
	}
	return s
}

// Interval is the half-open span [Start, End) of the week. End < Start
// crosses the Sunday/Monday seam. End may equal 604800 for a span that
// reaches the end of the week without wrapping.
type Interval struct {
	Start, End WeekMoment
}

// FullWeek is the always-open interval.
var FullWeek = Interval{Start: 0, End: secondsPerWeek}

func (iv Interval) Wraps() bool { return iv.End < iv.Start }

func (iv Interval) Contains(m WeekMoment) bool {
	if iv.Wraps() {
		return m >= iv.Start || m < iv.End
	}
	return m >= iv.Start && m < iv.End
}

// Len is the span in seconds.
func (iv Interval) Len() int {
	if iv == FullWeek {
		return secondsPerWeek
	}
	return week.forward(int(iv.Start), int(iv.End))
}

func (iv Interval) String() string {
	return iv.Start.String() + " - " + iv.End.String()
}

// materialize expands clauses into per-day, per-hour minute spans.
func materialize(clauses []Clause) []Interval {
	var out []Interval
	for _, c := range clauses {
		mins := c.effective(Minute)
		runs := Minute.domain().segments(mins.Start, mins.End)
		c.effective(Weekday).each(func(day int) {
			c.effective(Hour).each(func(hour int) {
				for _, run := range runs {
					out = append(out, Interval{
						Start: momentAt(day, hour, run[0]),
						End:   momentAt(day, hour, run[1]+1),
					})
				}
			})
		})
	}
	return out
}

// normalize merges overlapping or touching intervals into the canonical
// sorted, disjoint set. Spans meeting at the week seam fuse into a single
// wrapping interval.
func normalize(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b Interval) int { return cmp.Compare(a.Start, b.Start) })

	out := make([]Interval, 0, len(sorted))
	for _, iv := range sorted {
		if n := len(out); n > 0 && iv.Start <= out[n-1].End {
			out[n-1].End = max(out[n-1].End, iv.End)
			continue
		}
		out = append(out, iv)
	}

	if n := len(out); n > 1 && out[0].Start == 0 && out[n-1].End == secondsPerWeek {
		wrapped := Interval{Start: out[n-1].Start, End: out[0].End}
		out = append(out[1:n-1], wrapped)
	}
	return out
}
