/*
travel.go - Travel distance and its daily breakdown

PURPOSE:
  Produces the single travel line item. The billable distance is

    total = sum over billed days of (day override ?? per-day default)

  and the daily breakdown always sums to exactly that total.

BREAKDOWN MODES:
  - Any day carries a travel override: each day shows its own distance.
  - TravelUniform: each day shows the per-day default.
  - TravelRandomized: each day gets round(uniform(d-5, d+5)) km, floored
    at 0, then redistributeResidual moves the difference from the total
    back onto the days. Only the variance is random; the correction pass is
    deterministic and order-stable.

RANDOM SOURCE:
  One source per call, never shared between concurrent calculations.
*/
package invoice

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/catalog"
)

// TravelMode selects how the daily travel log is laid out. The billed
// distance is the same in every mode.
type TravelMode string

const (
	TravelUniform    TravelMode = "uniform"
	TravelRandomized TravelMode = "randomized"
)

// ParseTravelMode accepts "", "uniform" and "randomized".
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case "", TravelUniform:
		return TravelUniform, nil
	case TravelRandomized:
		return TravelRandomized, nil
	}
	return "", fmt.Errorf("unknown travel breakdown %q (use uniform or randomized)", s)
}

// travelSpread is the +/- range, in km, of a randomized day.
const travelSpread = 5

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// =============================================================================
// TRAVEL LINE ITEM
// =============================================================================

func (a Aggregator) travelItem(snapshot *catalog.Catalog, billed []billedDay, in Input) (LineItem, bool, *Warning) {
	if len(billed) == 0 {
		return LineItem{}, false, nil
	}

	breakdown := make([]TravelDay, len(billed))
	total := decimal.Zero
	hasOverride := false
	for i, day := range billed {
		km := in.TravelKmPerDay
		if day.schedule.TravelKm != nil {
			km = *day.schedule.TravelKm
			hasOverride = true
		}
		breakdown[i] = TravelDay{Date: day.date, Km: km}
		total = total.Add(km)
	}
	if !total.IsPositive() {
		return LineItem{}, false, nil
	}

	entry, ok := snapshot.Resolve(catalog.Travel)
	if !ok {
		w := missingEntry(catalog.Travel, total)
		return LineItem{}, false, &w
	}

	if !hasOverride && a.Travel == TravelRandomized {
		source := a.NewRand
		if source == nil {
			source = newRand
		}
		breakdown = RandomizeBreakdown(breakdown, in.TravelKmPerDay, total, source())
	}

	return LineItem{
		ServiceCode:    entry.Code,
		Description:    describeTravel(entry, len(billed), total, in.TravelKmPerDay, hasOverride),
		Quantity:       total,
		UnitRate:       entry.Rate,
		Total:          lineTotal(total, entry.Rate),
		Category:       catalog.Travel,
		Dates:          FormatTravelDates(breakdown),
		DailyBreakdown: breakdown,
	}, true, nil
}

func describeTravel(entry catalog.Entry, days int, total, perDay decimal.Decimal, hasOverride bool) string {
	desc := entry.Description
	if desc == "" {
		desc = catalog.Travel.Label()
	}
	if hasOverride {
		return fmt.Sprintf("%s - %s km over %s", desc, FormatQuantity(total), plural(days, "day"))
	}
	return fmt.Sprintf("%s - %s × %s km", desc, plural(days, "day"), FormatQuantity(perDay))
}

// =============================================================================
// RANDOMIZED BREAKDOWN
// =============================================================================

// RandomizeBreakdown replaces each day's km with a whole number drawn around
// perDay, then corrects the log so it sums to target exactly.
func RandomizeBreakdown(days []TravelDay, perDay, target decimal.Decimal, r *rand.Rand) []TravelDay {
	out := make([]TravelDay, len(days))
	center := perDay.InexactFloat64()
	for i, d := range days {
		v := math.Round(center - travelSpread + r.Float64()*2*travelSpread)
		if v < 0 {
			v = 0
		}
		out[i] = TravelDay{Date: d.Date, Km: decimal.NewFromFloat(v)}
	}
	redistributeResidual(out, target)
	return out
}

// redistributeResidual adjusts days in place until they sum to target.
// Whole km are added or removed one per day, earliest first, cycling as
// needed; a day is never taken below zero. Any fractional remainder lands on
// the first day that can absorb it.
func redistributeResidual(days []TravelDay, target decimal.Decimal) {
	if len(days) == 0 {
		return
	}
	one := decimal.NewFromInt(1)

	diff := target.Sub(sumKm(days))
	for diff.Abs().GreaterThanOrEqual(one) {
		moved := false
		for i := range days {
			if diff.Abs().LessThan(one) {
				break
			}
			switch {
			case diff.IsPositive():
				days[i].Km = days[i].Km.Add(one)
				diff = diff.Sub(one)
				moved = true
			case days[i].Km.GreaterThanOrEqual(one):
				days[i].Km = days[i].Km.Sub(one)
				diff = diff.Add(one)
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	if diff.IsZero() {
		return
	}
	for i := range days {
		if next := days[i].Km.Add(diff); !next.IsNegative() {
			days[i].Km = next
			return
		}
	}
}

func sumKm(days []TravelDay) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range days {
		sum = sum.Add(d.Km)
	}
	return sum
}
