// Package config loads application settings from the environment, with an
// optional .env file underneath. Environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/export"
	"github.com/brightsupport/invoice-engine/invoice"
)

// Config groups every setting the binaries need.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	Billing BillingConfig
	Company CompanyConfig
}

// AppConfig is the runtime environment.
type AppConfig struct {
	Env      string // development -> console logs; anything else -> JSON
	LogLevel string
}

func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// HTTPConfig is the listen address of cmd/server.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig selects the catalog/sequence store. Driver "memory" keeps
// everything in process.
type DBConfig struct {
	Driver string // sqlite3, libsql, memory
	URL    string
}

// BillingConfig holds the calculation parameters.
type BillingConfig struct {
	HolidayRegion   string
	TaxRate         decimal.Decimal
	TravelKmPerDay  decimal.Decimal
	TravelBreakdown invoice.TravelMode
	DefaultSchedule invoice.DaySchedule
}

// CompanyConfig is the provider block printed on documents.
type CompanyConfig struct {
	Name              string
	ABN               string
	Address           string
	Phone             string
	Email             string
	BankAccountName   string
	BankBSB           string
	BankAccountNumber string
}

// Provider converts the settings to the renderer's type.
func (c CompanyConfig) Provider() export.Company {
	return export.Company{
		Name:    c.Name,
		ABN:     c.ABN,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
		Bank: export.BankDetails{
			AccountName:   c.BankAccountName,
			BSB:           c.BankBSB,
			AccountNumber: c.BankAccountNumber,
		},
	}
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	taxRate, err := getDecimal(v, "TAX_RATE", "0")
	if err != nil {
		return nil, err
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE must not be negative, got %s", taxRate)
	}
	travelKm, err := getDecimal(v, "TRAVEL_KM_PER_DAY", "27.5")
	if err != nil {
		return nil, err
	}
	if travelKm.IsNegative() {
		return nil, fmt.Errorf("TRAVEL_KM_PER_DAY must not be negative, got %s", travelKm)
	}
	mode, err := invoice.ParseTravelMode(getString(v, "TRAVEL_BREAKDOWN", string(invoice.TravelUniform)))
	if err != nil {
		return nil, fmt.Errorf("TRAVEL_BREAKDOWN: %w", err)
	}

	var schedule invoice.DaySchedule
	if schedule.Daytime, err = getDecimal(v, "DEFAULT_DAYTIME_HOURS", "8"); err != nil {
		return nil, err
	}
	if schedule.Evening, err = getDecimal(v, "DEFAULT_EVENING_HOURS", "0"); err != nil {
		return nil, err
	}
	if schedule.Sleepover, err = getDecimal(v, "DEFAULT_SLEEPOVER_UNITS", "0"); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		DB: DBConfig{
			Driver: getString(v, "DATABASE_DRIVER", "sqlite3"),
			URL:    getString(v, "DATABASE_URL", "./invoices.db"),
		},
		Billing: BillingConfig{
			HolidayRegion:   strings.ToUpper(getString(v, "HOLIDAY_REGION", calendar.DefaultRegion)),
			TaxRate:         taxRate,
			TravelKmPerDay:  travelKm,
			TravelBreakdown: mode,
			DefaultSchedule: schedule,
		},
		Company: CompanyConfig{
			Name:              getString(v, "COMPANY_NAME", "Bright Support"),
			ABN:               getString(v, "COMPANY_ABN", ""),
			Address:           getString(v, "COMPANY_ADDRESS", ""),
			Phone:             getString(v, "COMPANY_PHONE", ""),
			Email:             getString(v, "COMPANY_EMAIL", ""),
			BankAccountName:   getString(v, "BANK_ACCOUNT_NAME", ""),
			BankBSB:           getString(v, "BANK_BSB", ""),
			BankAccountNumber: getString(v, "BANK_ACCOUNT_NUMBER", ""),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err == nil {
			return n
		}
	}
	return def
}

func getDecimal(v *viper.Viper, key, def string) (decimal.Decimal, error) {
	raw := getString(v, key, def)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q: %w", key, raw, err)
	}
	return d, nil
}
