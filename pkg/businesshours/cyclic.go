package businesshours

// cycle is a cyclic integer domain [lo, lo+size).
//
// Weekdays, hours, minutes and the week itself (in seconds) are all cycles;
// every wraparound computation goes through this type.
type cycle struct {
	lo   int
	size int
}

func (c cycle) hi() int { return c.lo + c.size - 1 }

func (c cycle) contains(v int) bool { return v >= c.lo && v <= c.hi() }

// wrap maps any integer onto the domain.
func (c cycle) wrap(v int) int {
	v = (v - c.lo) % c.size
	if v < 0 {
		v += c.size
	}
	return v + c.lo
}

// forward is the distance walked from a to b going upwards, in [0, size).
func (c cycle) forward(a, b int) int {
	return c.wrap(b-a+c.lo) - c.lo
}

// segments splits the inclusive cyclic range [start, end] into at most two
// ascending linear runs. start > end wraps past hi back to lo.
func (c cycle) segments(start, end int) [][2]int {
	if start <= end {
		return [][2]int{{start, end}}
	}
	return [][2]int{{start, c.hi()}, {c.lo, end}}
}

// each visits every value of the inclusive cyclic range [start, end] in walk
// order.
func (c cycle) each(start, end int, fn func(v int)) {
	for _, seg := range c.segments(start, end) {
		for v := seg[0]; v <= seg[1]; v++ {
			fn(v)
		}
	}
}
