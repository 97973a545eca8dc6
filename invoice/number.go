package invoice

import (
	"context"
	"fmt"

	"github.com/brightsupport/invoice-engine/calendar"
)

// SequenceStore hands out per-prefix counters starting at 1.
type SequenceStore interface {
	NextSequence(ctx context.Context, prefix string) (int, error)
}

// NumberGenerator issues invoice numbers of the form INV-YYYY-MMDD-NNNN, the
// counter restarting every day.
type NumberGenerator struct {
	Store SequenceStore
}

// NumberPrefix is the per-day part, e.g. "INV-2025-1126".
func NumberPrefix(date calendar.Date) string {
	return fmt.Sprintf("INV-%04d-%02d%02d", date.Year(), int(date.Month()), date.Day())
}

// FormatNumber renders a full invoice number.
func FormatNumber(date calendar.Date, seq int) string {
	return fmt.Sprintf("%s-%04d", NumberPrefix(date), seq)
}

// Next allocates the next number for date.
func (g NumberGenerator) Next(ctx context.Context, date calendar.Date) (string, error) {
	prefix := NumberPrefix(date)
	seq, err := g.Store.NextSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSequence, err)
	}
	return FormatNumber(date, seq), nil
}
