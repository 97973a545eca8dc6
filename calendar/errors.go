package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for a period that is missing a bound, ends
// before it starts, or spans more than MaxPeriodDays.
var ErrInvalidRange = errors.New("invalid range")

// RangeError carries the offending bounds.
type RangeError struct {
	Start  Date
	End    Date
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range %s to %s: %s", boundText(e.Start), boundText(e.End), e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

func boundText(d Date) string {
	if d.IsZero() {
		return "(none)"
	}
	return d.String()
}
