package businesshours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dimension identifies one of the three constrained units of a clause.
type Dimension int

const (
	Weekday Dimension = iota
	Hour
	Minute
)

type dimensionSpec struct {
	keyword string
	domain  cycle
	resolve func(tok string) (int, bool)
}

var dimensions = [...]dimensionSpec{
	Weekday: {keyword: "wday", domain: cycle{lo: 1, size: 7}, resolve: resolveWeekday},
	Hour:    {keyword: "hr", domain: cycle{lo: 0, size: 24}, resolve: resolveHour},
	Minute:  {keyword: "min", domain: cycle{lo: 0, size: 60}, resolve: resolveMinute},
}

func (d Dimension) String() string {
	if d < Weekday || d > Minute {
		return "Dimension(" + strconv.Itoa(int(d)) + ")"
	}
	return dimensions[d].keyword
}

func (d Dimension) domain() cycle { return dimensions[d].domain }

// dimensionFor matches a selector keyword exactly (case-insensitive).
// Synonyms such as "minute" or "weekday" are rejected.
func dimensionFor(keyword string) (Dimension, bool) {
	k := strings.ToLower(keyword)
	for d, spec := range dimensions {
		if spec.keyword == k {
			return Dimension(d), true
		}
	}
	return 0, false
}

// Range is an inclusive range on a dimension's cyclic domain. Start > End
// wraps around the domain maximum.
type Range struct {
	Dim        Dimension
	Start, End int
}

// FullRange covers the whole domain of d.
func FullRange(d Dimension) Range {
	c := d.domain()
	return Range{Dim: d, Start: c.lo, End: c.hi()}
}

func (r Range) Wraps() bool { return r.Start > r.End }

func (r Range) IsFull() bool { return r == FullRange(r.Dim) }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%s{%d}", r.Dim, r.Start)
	}
	return fmt.Sprintf("%s{%d-%d}", r.Dim, r.Start, r.End)
}

func (r Range) each(fn func(v int)) { r.Dim.domain().each(r.Start, r.End, fn) }

// resolveRange turns a selector body ("v" or "a-b") into a Range.
func resolveRange(d Dimension, body string) (Range, error) {
	parts := strings.Split(body, "-")
	if len(parts) > 2 {
		return Range{}, fmt.Errorf("%w: %s{%s}: more than one range separator", ErrInvalidFormat, d, body)
	}
	vals := make([]int, 0, 2)
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		v, ok := dimensions[d].resolve(tok)
		if !ok || !d.domain().contains(v) {
			return Range{}, fmt.Errorf("%w: %s{%s}: bad value %q", ErrInvalidFormat, d, body, tok)
		}
		vals = append(vals, v)
	}
	if len(vals) == 1 {
		return Range{Dim: d, Start: vals[0], End: vals[0]}, nil
	}
	return Range{Dim: d, Start: vals[0], End: vals[1]}, nil
}

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	reNumber = regexp.MustCompile(`^\d{1,2}$`)
	reHour   = regexp.MustCompile(`^(\d{1,2})(am|pm|noon)$`)
)

// resolveWeekday accepts 1..7 or any prefix of at least two letters of an
// English day name (mo, tue, wednes, ...).
func resolveWeekday(tok string) (int, bool) {
	if reNumber.MatchString(tok) {
		n, _ := strconv.Atoi(tok)
		return n, true
	}
	t := strings.ToLower(tok)
	if len(t) < 2 {
		return 0, false
	}
	for i, name := range weekdayNames {
		if strings.HasPrefix(name, t) {
			return i + 1, true
		}
	}
	return 0, false
}

// resolveHour accepts 0..23 or a 12-hour clock value: 12am=0, 1am..11am,
// 12pm=12noon=12, 1pm..11pm.
func resolveHour(tok string) (int, bool) {
	if reNumber.MatchString(tok) {
		n, _ := strconv.Atoi(tok)
		return n, true
	}
	m := reHour.FindStringSubmatch(strings.ToLower(tok))
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 || n > 12 {
		return 0, false
	}
	switch m[2] {
	case "am":
		return n % 12, true
	case "pm":
		return n%12 + 12, true
	default: // noon
		return 12, n == 12
	}
}

func resolveMinute(tok string) (int, bool) {
	if !reNumber.MatchString(tok) {
		return 0, false
	}
	n, _ := strconv.Atoi(tok)
	return n, true
}
