package businesshours

import (
	"strconv"
	"strings"
)

// Canonical renders the canonical interval set back into rule text. Parsing
// the result gives a schedule equal to b. Always-open schedules render as "".
func (b *BusinessHours) Canonical() string {
	if b.IsAlwaysOpen() {
		return ""
	}
	var clauses []string
	for _, iv := range b.intervals {
		clauses = append(clauses, renderInterval(iv)...)
	}
	return strings.Join(clauses, ", ")
}

// renderInterval walks iv from its start, emitting the coarsest clause that
// fits at each step: a partial hour, then whole hours, then whole days.
func renderInterval(iv Interval) []string {
	var out []string
	cur, left := int(iv.Start), iv.Len()
	for left >= secondsPerMinute {
		m := WeekMoment(cur)
		day, hour, minute := dayName(m.Weekday()), m.Hour(), m.Minute()
		var step int
		switch {
		case minute != 0 || left < secondsPerHour:
			n := min(60-minute, left/secondsPerMinute)
			out = append(out, "wday{"+day+"} hr{"+strconv.Itoa(hour)+"} min{"+span(minute, minute+n-1)+"}")
			step = n * secondsPerMinute
		case hour != 0 || left < secondsPerDay:
			n := min(24-hour, left/secondsPerHour)
			out = append(out, "wday{"+day+"} hr{"+span(hour, hour+n-1)+"}")
			step = n * secondsPerHour
		default:
			n := min(7, left/secondsPerDay)
			last := dayName(Weekday.domain().wrap(m.Weekday() + n - 1))
			if last == day {
				out = append(out, "wday{"+day+"}")
			} else {
				out = append(out, "wday{"+day+"-"+last+"}")
			}
			step = n * secondsPerDay
		}
		cur = week.wrap(cur + step)
		left -= step
	}
	return out
}

func dayName(iso int) string { return strings.ToLower(dayAbbrev[iso-1]) }

func span(a, b int) string {
	if a == b {
		return strconv.Itoa(a)
	}
	return strconv.Itoa(a) + "-" + strconv.Itoa(b)
}
