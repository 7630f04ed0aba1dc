package businesshours

import (
	"slices"
	"testing"
)

func TestCycle(t *testing.T) {
	t.Parallel()
	days := cycle{lo: 1, size: 7}
	if got := days.wrap(8); got != 1 {
		t.Fatalf("wrap(8) = %d, want 1", got)
	}
	if got := days.wrap(0); got != 7 {
		t.Fatalf("wrap(0) = %d, want 7", got)
	}
	if got := days.forward(6, 2); got != 3 {
		t.Fatalf("forward(6, 2) = %d, want 3", got)
	}
	if got := week.forward(secondsPerWeek-60, 0); got != 60 {
		t.Fatalf("week.forward across seam = %d, want 60", got)
	}

	var walked []int
	days.each(6, 1, func(v int) { walked = append(walked, v) })
	if !slices.Equal(walked, []int{6, 7, 1}) {
		t.Fatalf("each(6, 1) = %v", walked)
	}
	if segs := (cycle{lo: 0, size: 24}).segments(21, 3); len(segs) != 2 || segs[0] != [2]int{21, 23} || segs[1] != [2]int{0, 3} {
		t.Fatalf("segments(21, 3) = %v", segs)
	}
}

func TestResolveTokens(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dim  Dimension
		body string
		want Range
	}{
		{Weekday, "mo-we", Range{Weekday, 1, 3}},
		{Weekday, "Sunday", Range{Weekday, 7, 7}},
		{Weekday, "thu-tu", Range{Weekday, 4, 2}},
		{Weekday, "5", Range{Weekday, 5, 5}},
		{Hour, "10pm-8am", Range{Hour, 22, 8}},
		{Hour, "12AM", Range{Hour, 0, 0}},
		{Hour, "12noon", Range{Hour, 12, 12}},
		{Hour, " 09 - 17 ", Range{Hour, 9, 17}},
		{Minute, "50-10", Range{Minute, 50, 10}},
	}
	for _, tt := range tests {
		got, err := resolveRange(tt.dim, tt.body)
		if err != nil {
			t.Fatalf("resolveRange(%s, %q): %v", tt.dim, tt.body, err)
		}
		if got != tt.want {
			t.Fatalf("resolveRange(%s, %q) = %+v, want %+v", tt.dim, tt.body, got, tt.want)
		}
	}
}

func TestClauseDefaults(t *testing.T) {
	t.Parallel()
	rule := "hr{20} min{30-59}, wday{sa}"
	clauses, err := ParseClauses(&rule)
	if err != nil {
		t.Fatalf("ParseClauses: %v", err)
	}
	if len(clauses) != 2 {
		t.Fatalf("len(clauses) = %d, want 2", len(clauses))
	}
	if _, ok := clauses[0].Range(Weekday); ok {
		t.Fatal("first clause should not carry a weekday selector")
	}
	if got := clauses[0].effective(Weekday); !got.IsFull() {
		t.Fatalf("default weekday range = %v, want full", got)
	}
	if got := clauses[1].String(); got != "wday{6}" {
		t.Fatalf("clause String() = %q", got)
	}
	ivs := materialize(clauses[:1])
	if len(ivs) != 7 || ivs[0] != (Interval{Start: momentAt(1, 20, 30), End: momentAt(1, 21, 0)}) {
		t.Fatalf("materialize = %v", ivs)
	}
}
