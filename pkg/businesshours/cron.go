package businesshours

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// OpeningCrons returns 5-field cron expressions firing at every opening. Days
// sharing the same opening time are grouped into one expression. The result
// is sorted and free of duplicates; always-open schedules have none.
func (b *BusinessHours) OpeningCrons() []string {
	return b.crons(func(iv Interval) WeekMoment { return iv.Start })
}

// ClosingCrons returns cron expressions firing at the first closed minute
// after every open interval, grouped like OpeningCrons.
func (b *BusinessHours) ClosingCrons() []string {
	return b.crons(func(iv Interval) WeekMoment { return iv.End })
}

type timeOfDay struct{ hour, minute int }

func (b *BusinessHours) crons(boundary func(Interval) WeekMoment) []string {
	if b.IsAlwaysOpen() {
		return nil
	}
	days := make(map[timeOfDay][]int, len(b.intervals))
	for _, iv := range b.intervals {
		m := WeekMoment(week.wrap(int(boundary(iv))))
		at := timeOfDay{hour: m.Hour(), minute: m.Minute()}
		days[at] = append(days[at], cronWeekday(m.Weekday()))
	}
	out := make([]string, 0, len(days))
	for at, ds := range days {
		out = append(out, fmt.Sprintf("%d %d * * %s", at.minute, at.hour, dowField(ds)))
	}
	slices.Sort(out)
	return out
}

// cronWeekday converts ISO numbering to cron's, where Sunday is 0.
func cronWeekday(iso int) int { return iso % 7 }

// dowField compresses cron weekdays into runs: {1,2,3,5} => "1-3,5".
// A run crossing Saturday/Sunday is split since cron ranges cannot wrap.
func dowField(days []int) string {
	ds := slices.Clone(days)
	slices.Sort(ds)
	ds = slices.Compact(ds)

	var parts []string
	for i := 0; i < len(ds); {
		j := i
		for j+1 < len(ds) && ds[j+1] == ds[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, strconv.Itoa(ds[i])+"-"+strconv.Itoa(ds[j]))
		} else {
			parts = append(parts, strconv.Itoa(ds[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
