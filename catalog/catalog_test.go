package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func entry(id string, cat catalog.Category, code, rate string, active bool) catalog.Entry {
	return catalog.Entry{
		ID:          id,
		Category:    cat,
		Code:        code,
		Description: "Service " + code,
		Rate:        decimal.RequireFromString(rate),
		Active:      active,
	}
}

func mustCatalog(t *testing.T, entries ...catalog.Entry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(entries)
	require.NoError(t, err)
	return c
}

// =============================================================================
// RESOLVE
// =============================================================================

func TestResolve_FirstActiveWins(t *testing.T) {
	c := mustCatalog(t,
		entry("a", catalog.Weekday, "OLD", "60.00", false),
		entry("b", catalog.Weekday, "NEW", "67.56", true),
		entry("c", catalog.Weekday, "NEWER", "70.00", true),
	)

	got, ok := c.Resolve(catalog.Weekday)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestResolve_FallsBackToFirstInactive(t *testing.T) {
	c := mustCatalog(t,
		entry("a", catalog.Sunday, "S1", "120.00", false),
		entry("b", catalog.Sunday, "S2", "122.59", false),
	)

	got, ok := c.Resolve(catalog.Sunday)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestResolve_NoEntry(t *testing.T) {
	c := mustCatalog(t, entry("a", catalog.Weekday, "W", "67.56", true))

	_, ok := c.Resolve(catalog.PublicHoliday)
	assert.False(t, ok)

	var nilCatalog *catalog.Catalog
	_, ok = nilCatalog.Resolve(catalog.Weekday)
	assert.False(t, ok)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestNew_ReportsEveryViolation(t *testing.T) {
	bad := []catalog.Entry{
		{ID: "1", Category: catalog.Weekday, Code: "", Description: "x", Rate: decimal.NewFromInt(1)},
		{ID: "2", Category: catalog.Weekday, Code: "W", Description: " ", Rate: decimal.NewFromInt(-1)},
		{ID: "3", Category: "overnight", Code: "Z", Description: "z", Rate: decimal.Zero},
	}

	_, err := catalog.New(bad)
	require.ErrorIs(t, err, catalog.ErrCatalogValidation)

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string][]string{}
	for _, v := range verr.Violations {
		fields[v.EntryID] = append(fields[v.EntryID], v.Field)
	}
	assert.Equal(t, []string{"code"}, fields["1"])
	assert.ElementsMatch(t, []string{"description", "rate"}, fields["2"])
	assert.Equal(t, []string{"category"}, fields["3"])
}

func TestNew_DuplicateCodeOnlyWithinCategory(t *testing.T) {
	// Same code in two categories is fine.
	_, err := catalog.New([]catalog.Entry{
		entry("a", catalog.Weekday, "X", "1", true),
		entry("b", catalog.Saturday, "X", "1", true),
	})
	require.NoError(t, err)

	_, err = catalog.New([]catalog.Entry{
		entry("a", catalog.Weekday, "X", "1", true),
		entry("b", catalog.Weekday, "X", "2", false),
	})
	require.ErrorIs(t, err, catalog.ErrCatalogValidation)
}

func TestNew_DuplicateIDs(t *testing.T) {
	_, err := catalog.New([]catalog.Entry{
		entry("x", catalog.Weekday, "W1", "1", true),
		entry("x", catalog.Saturday, "S1", "1", true),
	})
	require.ErrorIs(t, err, catalog.ErrCatalogValidation)

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "id", verr.Violations[0].Field)
	assert.Equal(t, "S1", verr.Violations[0].Code)
}

func TestManager_DuplicateIDImportIsAValidationError(t *testing.T) {
	// GIVEN: a manager over an empty store
	m := catalog.NewManager(memory.New())
	before, err := m.Load(context.Background())
	require.NoError(t, err)

	// WHEN: importing two entries that share an id
	_, err = m.Import(context.Background(), []catalog.Entry{
		entry("x", catalog.Weekday, "W1", "1", true),
		entry("x", catalog.Saturday, "S1", "1", true),
	})

	// THEN: the import is rejected before anything is saved
	require.ErrorIs(t, err, catalog.ErrCatalogValidation)
	after, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Entries(), after.Entries())
}

func TestNew_AssignsMissingIDs(t *testing.T) {
	c := mustCatalog(t, entry("", catalog.Travel, "T", "1.00", true))
	assert.NotEmpty(t, c.Entries()[0].ID)
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestMutations_LeaveReceiverUnchanged(t *testing.T) {
	base := mustCatalog(t,
		entry("a", catalog.Weekday, "W", "67.56", true),
		entry("b", catalog.Travel, "T", "1.00", true),
	)

	added, err := base.Add(entry("", catalog.Sunday, "S", "122.59", true))
	require.NoError(t, err)
	assert.Equal(t, 3, added.Len())
	assert.Equal(t, 2, base.Len())

	updated, err := base.Update(entry("a", catalog.Weekday, "W", "70.00", true))
	require.NoError(t, err)
	got, _ := updated.Find("a")
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("70")))
	orig, _ := base.Find("a")
	assert.True(t, orig.Rate.Equal(decimal.RequireFromString("67.56")))

	deleted, err := base.Delete("b")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.Len())
	assert.Equal(t, 2, base.Len())
}

func TestMutations_RejectionReturnsNoCatalog(t *testing.T) {
	base := mustCatalog(t, entry("a", catalog.Weekday, "W", "67.56", true))

	next, err := base.Add(entry("b", catalog.Weekday, "W", "1", true))
	assert.ErrorIs(t, err, catalog.ErrCatalogValidation)
	assert.Nil(t, next)

	next, err = base.Update(entry("a", catalog.Weekday, "W", "-5", true))
	assert.ErrorIs(t, err, catalog.ErrCatalogValidation)
	assert.Nil(t, next)

	_, err = base.Delete("missing")
	assert.ErrorIs(t, err, catalog.ErrEntryNotFound)

	_, err = base.Update(entry("missing", catalog.Weekday, "Q", "1", true))
	assert.ErrorIs(t, err, catalog.ErrEntryNotFound)
}

func TestFilter(t *testing.T) {
	c := mustCatalog(t,
		catalog.Entry{ID: "1", Category: catalog.Weekday, Code: "04_104", Description: "Community access daytime", Rate: decimal.NewFromInt(1)},
		catalog.Entry{ID: "2", Category: catalog.Weekday, Code: "04_103", Description: "Community access evening", Rate: decimal.NewFromInt(1)},
		catalog.Entry{ID: "3", Category: catalog.Travel, Code: "04_799", Description: "Transport", Rate: decimal.NewFromInt(1)},
	)

	assert.Len(t, c.Filter("", ""), 3)
	assert.Len(t, c.Filter(catalog.Weekday, ""), 2)
	assert.Len(t, c.Filter("", "EVENING"), 1)
	assert.Len(t, c.Filter("", "04_7"), 1)
	assert.Empty(t, c.Filter(catalog.Travel, "community"))
}

// =============================================================================
// JSON + DEFAULTS
// =============================================================================

func TestDefault_RateCard(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	for _, cat := range catalog.Categories {
		_, ok := c.Resolve(cat)
		assert.True(t, ok, "default dataset covers %s", cat)
	}

	weekday, _ := c.Resolve(catalog.Weekday)
	assert.Equal(t, "04_104_0125_6_1", weekday.Code)
	assert.True(t, weekday.Rate.Equal(decimal.RequireFromString("67.56")))

	travel, _ := c.Resolve(catalog.Travel)
	assert.True(t, travel.Rate.Equal(decimal.NewFromInt(1)))
}

func TestParseEntries_DefaultsAndExactRates(t *testing.T) {
	entries, err := catalog.ParseEntries([]byte(`[
		{"category":"publicHoliday","code":"PH","description":"Holiday","rate":150.10}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, entries[0].Active, "missing active means true")
	assert.Equal(t, "150.1", entries[0].Rate.String())
}

func TestParseEntries_Malformed(t *testing.T) {
	_, err := catalog.ParseEntries([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	_, err = catalog.ParseEntries([]byte(`[{"category":"weekday","code":"W","description":"d","rate":"abc"}]`))
	assert.Error(t, err)
}

func TestExport_ImportsBack(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))

	entries, err := catalog.DecodeEntries(&buf)
	require.NoError(t, err)

	imported, err := c.Import(entries)
	require.NoError(t, err)
	assert.Equal(t, c.Len(), imported.Len())
}

// =============================================================================
// MANAGER
// =============================================================================

func TestManager_DefaultsUntilEdited(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := catalog.NewManager(store)

	// GIVEN: no override stored
	c, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())

	// WHEN: an entry is added
	_, err = m.Add(ctx, entry("", catalog.Weekday, "EXTRA", "1.00", false))
	require.NoError(t, err)

	// THEN: the override is what loads
	c, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())

	// AND: reset restores the defaults
	_, err = m.Reset(ctx)
	require.NoError(t, err)
	c, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())
}

func TestManager_RejectedImportKeepsPreviousCatalog(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewManager(memory.New())

	before, err := m.Load(ctx)
	require.NoError(t, err)

	// WHEN: importing a list with a duplicate (category, code)
	_, err = m.Import(ctx, []catalog.Entry{
		entry("x", catalog.Weekday, "DUP", "1", true),
		entry("y", catalog.Weekday, "DUP", "2", true),
	})

	// THEN: rejected, and the loaded catalog is unchanged
	require.ErrorIs(t, err, catalog.ErrCatalogValidation)
	after, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Entries(), after.Entries())
}

func TestManager_SerializesConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewManagerWithDefaults(memory.New(), mustCatalog(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Add(ctx, entry("", catalog.Weekday, "C"+string(rune('A'+i)), "1", true))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	c, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, c.Len())
}

type failingStore struct{ *memory.Store }

func (failingStore) LoadOverride(context.Context) ([]catalog.Entry, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func TestManager_LoadFailureIsErrLoad(t *testing.T) {
	m := catalog.NewManager(failingStore{memory.New()})
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrLoad)
}
