package businesshours

import "errors"

var (
	// ErrNullInput is returned when no rule text was supplied at all.
	ErrNullInput = errors.New("business hours: missing rule text")
	// ErrInvalidFormat covers every malformed rule.
	ErrInvalidFormat = errors.New("business hours: invalid format")
)
