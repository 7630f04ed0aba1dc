package businesshours

import (
	"fmt"
	"regexp"
	"strings"
)

// Clause intersects at most one range per dimension. A dimension without a
// selector spans its whole domain.
type Clause struct {
	ranges [3]Range
	set    [3]bool
}

// Range returns the selector for d, if the clause has one.
func (c Clause) Range(d Dimension) (Range, bool) {
	return c.ranges[d], c.set[d]
}

// effective is the range in force for d once defaults apply.
func (c Clause) effective(d Dimension) Range {
	if c.set[d] {
		return c.ranges[d]
	}
	return FullRange(d)
}

func (c Clause) String() string {
	parts := make([]string, 0, 3)
	for d := Weekday; d <= Minute; d++ {
		if c.set[d] {
			parts = append(parts, c.ranges[d].String())
		}
	}
	return strings.Join(parts, " ")
}

var reSelector = regexp.MustCompile(`([A-Za-z]+)\s*\{([^{}]*)\}`)

// ParseClauses splits a rule into its clauses. A nil rule yields
// ErrNullInput; any malformed clause yields ErrInvalidFormat and no clauses.
// Blank text has no clauses.
func ParseClauses(rule *string) ([]Clause, error) {
	if rule == nil {
		return nil, ErrNullInput
	}
	if strings.TrimSpace(*rule) == "" {
		return nil, nil
	}
	raw := strings.Split(*rule, ",")
	out := make([]Clause, 0, len(raw))
	for i, text := range raw {
		c, err := parseClause(text)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseClause(text string) (Clause, error) {
	var c Clause
	matches := reSelector.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return c, fmt.Errorf("%w: no selector in %q", ErrInvalidFormat, strings.TrimSpace(text))
	}
	pos := 0
	for _, m := range matches {
		if gap := text[pos:m[0]]; strings.TrimSpace(gap) != "" {
			return c, fmt.Errorf("%w: unexpected %q", ErrInvalidFormat, strings.TrimSpace(gap))
		}
		pos = m[1]

		keyword, body := text[m[2]:m[3]], text[m[4]:m[5]]
		d, ok := dimensionFor(keyword)
		if !ok {
			return c, fmt.Errorf("%w: unknown selector %q", ErrInvalidFormat, keyword)
		}
		if c.set[d] {
			return c, fmt.Errorf("%w: selector %s repeated", ErrInvalidFormat, d)
		}
		r, err := resolveRange(d, body)
		if err != nil {
			return c, err
		}
		c.ranges[d], c.set[d] = r, true
	}
	if tail := text[pos:]; strings.TrimSpace(tail) != "" {
		return c, fmt.Errorf("%w: unexpected %q", ErrInvalidFormat, strings.TrimSpace(tail))
	}
	return c, nil
}
