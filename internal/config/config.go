package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"clubfees/internal/billing"
)

type Config struct {
	// HTTP
	Port string

	// Database
	PostgresURL   string
	DBAutoMigrate bool

	// Logging
	LogLevel  string
	LogFormat string

	// Currency
	DefaultCurrency  string
	CurrencyCacheTTL time.Duration

	Billing BillingConfig
	Payment PaymentConfig
}

type BillingConfig struct {
	FeeTypeCode       string
	GraceDays         int
	NonMonthlyMode    billing.LedgerMode
	OverpaymentPolicy billing.OverpaymentPolicy
	Workers           int
	PageSize          int
	JobInterval       time.Duration // 0 disables the background job
}

// ScheduleOptions is the scheduler's view of the billing config.
func (b BillingConfig) ScheduleOptions() billing.ScheduleOptions {
	return billing.ScheduleOptions{GraceDays: b.GraceDays, Mode: b.NonMonthlyMode}
}

type PaymentConfig struct {
	LockAttachmentsWhenPaid bool
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be an integer", key))
		}
		return v
	}
	boolVar := func(key string, def bool) bool {
		v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(def)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a boolean", key))
		}
		return v
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		v, err := time.ParseDuration(getEnv(key, def.String()))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a duration", key))
		}
		return v
	}

	mode, err := billing.ParseLedgerMode(getEnv("BILLING_NON_MONTHLY_MODE", string(billing.LedgerMonthlyRows)))
	if err != nil {
		errs = append(errs, "BILLING_NON_MONTHLY_MODE: "+err.Error())
	}
	policy, err := billing.ParseOverpaymentPolicy(getEnv("BILLING_OVERPAYMENT_POLICY", string(billing.OverpaymentCap)))
	if err != nil {
		errs = append(errs, "BILLING_OVERPAYMENT_POLICY: "+err.Error())
	}

	config := &Config{
		Port:             getEnv("PORT", "8080"),
		PostgresURL:      getEnv("POSTGRES_URL", ""),
		DBAutoMigrate:    boolVar("DB_AUTO_MIGRATE", true),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		DefaultCurrency:  billing.NormalizeCurrencyCode(getEnv("DEFAULT_CURRENCY", "")),
		CurrencyCacheTTL: durationVar("CURRENCY_CACHE_TTL", 5*time.Minute),
		Billing: BillingConfig{
			FeeTypeCode:       getEnv("BILLING_FEE_TYPE_CODE", "monthly_tuition"),
			GraceDays:         intVar("BILLING_GRACE_DAYS", 0),
			NonMonthlyMode:    mode,
			OverpaymentPolicy: policy,
			Workers:           intVar("BILLING_WORKERS", 8),
			PageSize:          intVar("BILLING_PAGE_SIZE", 200),
			JobInterval:       durationVar("BILLING_JOB_INTERVAL", 0),
		},
		Payment: PaymentConfig{
			LockAttachmentsWhenPaid: boolVar("PAYMENT_LOCK_ATTACHMENTS_WHEN_PAID", true),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.PostgresURL == "" {
		return fmt.Errorf("POSTGRES_URL is required")
	}
	if c.DefaultCurrency != "" && !billing.ValidCurrencyCode(c.DefaultCurrency) {
		return fmt.Errorf("DEFAULT_CURRENCY must be a three-letter code")
	}
	if c.Billing.FeeTypeCode == "" {
		return fmt.Errorf("BILLING_FEE_TYPE_CODE is required")
	}
	if c.Billing.GraceDays < 0 {
		return fmt.Errorf("BILLING_GRACE_DAYS must not be negative")
	}
	if c.Billing.Workers < 1 {
		return fmt.Errorf("BILLING_WORKERS must be at least 1")
	}
	if c.Billing.PageSize < 1 {
		return fmt.Errorf("BILLING_PAGE_SIZE must be at least 1")
	}
	if c.Billing.JobInterval < 0 {
		return fmt.Errorf("BILLING_JOB_INTERVAL must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
