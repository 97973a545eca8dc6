package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsupport/invoice-engine/config"
	"github.com/brightsupport/invoice-engine/invoice"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "VIC", cfg.Billing.HolidayRegion)
	assert.True(t, cfg.Billing.TaxRate.IsZero())
	assert.Equal(t, "27.5", cfg.Billing.TravelKmPerDay.String())
	assert.Equal(t, invoice.TravelUniform, cfg.Billing.TravelBreakdown)
	assert.Equal(t, "8", cfg.Billing.DefaultSchedule.Daytime.String())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("HOLIDAY_REGION", "nsw")
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("TRAVEL_BREAKDOWN", "randomized")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DEFAULT_EVENING_HOURS", "2.5")
	t.Setenv("COMPANY_NAME", "Acme Care")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "NSW", cfg.Billing.HolidayRegion)
	assert.Equal(t, "0.1", cfg.Billing.TaxRate.String())
	assert.Equal(t, invoice.TravelRandomized, cfg.Billing.TravelBreakdown)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "2.5", cfg.Billing.DefaultSchedule.Evening.String())
	assert.Equal(t, "Acme Care", cfg.Company.Provider().Name)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"bad tax":         {"TAX_RATE", "ten percent"},
		"negative tax":    {"TAX_RATE", "-0.1"},
		"negative travel": {"TRAVEL_KM_PER_DAY", "-1"},
		"unknown mode":    {"TRAVEL_BREAKDOWN", "chaotic"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
