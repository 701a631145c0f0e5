package selection

import "errors"

var (
	// ErrMalformedTuplet indicates a tuplet missing @num or @numbase.
	ErrMalformedTuplet = errors.New("tuplet needs both @num and @numbase")

	// ErrStaffUnresolved indicates a timed event whose staff cannot be derived.
	ErrStaffUnresolved = errors.New("cannot determine staff for event")

	// ErrInvalidDuration indicates an unparseable or non-positive @dur.
	ErrInvalidDuration = errors.New("invalid duration")
)
