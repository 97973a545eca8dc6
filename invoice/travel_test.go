package invoice_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
)

func travelDays(n int, perDay decimal.Decimal) []invoice.TravelDay {
	days := make([]invoice.TravelDay, n)
	start := d("2025-03-01")
	for i := range days {
		days[i] = invoice.TravelDay{Date: start.AddDays(i), Km: perDay}
	}
	return days
}

func sumKm(days []invoice.TravelDay) decimal.Decimal {
	sum := decimal.Zero
	for _, day := range days {
		sum = sum.Add(day.Km)
	}
	return sum
}

func TestRandomizeBreakdown_SumsExactlyToTarget(t *testing.T) {
	counts := []int{0, 1, 2, 7, 31}
	perDays := []string{"0", "1", "3", "4.3", "27.5", "100"}

	for _, n := range counts {
		for _, pd := range perDays {
			perDay := dec(pd)
			target := perDay.Mul(decimal.NewFromInt(int64(n)))

			t.Run(fmt.Sprintf("%d_days_%skm", n, pd), func(t *testing.T) {
				for seed := uint64(1); seed <= 25; seed++ {
					r := rand.New(rand.NewPCG(seed, seed*7919))
					out := invoice.RandomizeBreakdown(travelDays(n, perDay), perDay, target, r)

					require.Len(t, out, n)
					assert.True(t, sumKm(out).Equal(target), "seed %d: sum %s != %s", seed, sumKm(out), target)
					for _, day := range out {
						assert.False(t, day.Km.IsNegative(), "seed %d: negative km", seed)
					}
				}
			})
		}
	}
}

func TestRandomizeBreakdown_KeepsDatesInOrder(t *testing.T) {
	in := travelDays(5, dec("27.5"))
	out := invoice.RandomizeBreakdown(in, dec("27.5"), dec("137.5"), rand.New(rand.NewPCG(42, 42)))

	for i := range in {
		assert.Equal(t, in[i].Date, out[i].Date)
	}
	// input untouched
	assert.True(t, in[0].Km.Equal(dec("27.5")))
}

func TestAggregate_RandomizedTravelPreservesTotal(t *testing.T) {
	// GIVEN: a randomized aggregator over a fortnight
	days, err := calendar.Categorize(calendar.NewCalendar("VIC", nil), d("2025-03-03"), d("2025-03-16"), nil)
	require.NoError(t, err)

	agg := invoice.Aggregator{
		Travel:  invoice.TravelRandomized,
		NewRand: func() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) },
	}

	// WHEN: aggregating
	items, warnings := agg.Aggregate(defaultCatalog(t), invoice.Input{
		Days:           days,
		Default:        invoice.Hours(8, 0, 0),
		TravelKmPerDay: dec("27.5"),
	})
	require.Empty(t, warnings)

	// THEN: the billed quantity is 14 x 27.5 and the log sums to it
	travel := items[len(items)-1]
	require.Equal(t, catalog.Travel, travel.Category)
	assertDecimal(t, "385", travel.Quantity)
	assertDecimal(t, "385", sumKm(travel.DailyBreakdown))
	assert.Equal(t, invoice.FormatTravelDates(travel.DailyBreakdown), travel.Dates)
}

func TestAggregate_TravelOverridesAreDeterministic(t *testing.T) {
	days, err := calendar.Categorize(calendar.NewCalendar("VIC", nil), d("2025-01-06"), d("2025-01-08"), nil)
	require.NoError(t, err)

	agg := invoice.Aggregator{Travel: invoice.TravelRandomized}
	items, _ := agg.Aggregate(defaultCatalog(t), invoice.Input{
		Days:    days,
		Default: invoice.Hours(8, 0, 0),
		Overrides: invoice.ScheduleOverrides{
			d("2025-01-07"): invoice.Hours(8, 0, 0).WithTravel(dec("50")),
		},
		TravelKmPerDay: dec("27.5"),
	})

	travel := items[len(items)-1]
	assertDecimal(t, "105", travel.Quantity)
	assert.Equal(t, "06/01/25: 27.5km, 07/01/25: 50km, 08/01/25: 27.5km", travel.Dates)
	assert.Contains(t, travel.Description, "105 km over 3 days")
}

func TestAggregate_ZeroHourDayIgnoresTravelOverride(t *testing.T) {
	days, err := calendar.Categorize(calendar.NewCalendar("VIC", nil), d("2025-01-06"), d("2025-01-07"), nil)
	require.NoError(t, err)

	items, _ := invoice.Aggregator{}.Aggregate(defaultCatalog(t), invoice.Input{
		Days:    days,
		Default: invoice.Hours(8, 0, 0),
		Overrides: invoice.ScheduleOverrides{
			d("2025-01-07"): invoice.Hours(0, 0, 0).WithTravel(dec("80")),
		},
		TravelKmPerDay: dec("10"),
	})

	travel := items[len(items)-1]
	assertDecimal(t, "10", travel.Quantity)
	assert.Len(t, travel.DailyBreakdown, 1)
}

func TestParseTravelMode(t *testing.T) {
	m, err := invoice.ParseTravelMode("")
	require.NoError(t, err)
	assert.Equal(t, invoice.TravelUniform, m)

	m, err = invoice.ParseTravelMode("randomized")
	require.NoError(t, err)
	assert.Equal(t, invoice.TravelRandomized, m)

	_, err = invoice.ParseTravelMode("chaotic")
	assert.Error(t, err)
}
