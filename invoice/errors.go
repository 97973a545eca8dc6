package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brightsupport/invoice-engine/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIncompleteClientInfo is returned by the assembler when the client
	// name or NDIS number is blank. Callers should gate on ClientInfo.Missing
	// before building rather than relying on this for form state.
	ErrIncompleteClientInfo = errors.New("client information incomplete")

	// ErrInvalidSchedule is returned for negative hours, units or km.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrSequence is returned when an invoice number cannot be allocated.
	ErrSequence = errors.New("failed to allocate invoice number")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// IncompleteClientError lists the missing required fields.
type IncompleteClientError struct {
	Missing []string
}

func (e *IncompleteClientError) Error() string {
	return "client information incomplete: missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteClientError) Unwrap() error { return ErrIncompleteClientInfo }

// ScheduleError names the offending field. Date is zero for the default
// schedule.
type ScheduleError struct {
	Date  calendar.Date
	Field string
	Value string
}

func (e *ScheduleError) Error() string {
	where := "default schedule"
	if !e.Date.IsZero() {
		where = "schedule for " + e.Date.String()
	}
	return fmt.Sprintf("invalid schedule: %s has negative %s (%s)", where, e.Field, e.Value)
}

func (e *ScheduleError) Unwrap() error { return ErrInvalidSchedule }
