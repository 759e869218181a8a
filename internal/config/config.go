package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Policy   PolicyConfig
	Company  CompanyConfig
}

// CompanyConfig is the letterhead printed on rendered payslips.
type CompanyConfig struct {
	Name       string
	AddressOne string
	AddressTwo string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT verification configuration. Token issuance lives in the
// identity service; this application only verifies bearer tokens.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// PolicyConfig holds the payroll and attendance policy constants. These are
// deliberately configuration, not literals: batch jobs and alternate clients
// must observe the same thresholds as the interactive API.
type PolicyConfig struct {
	// WorkingDaysDivisor divides the monthly base salary into a per-day rate.
	// Fixed at 26 regardless of the period's calendar length.
	WorkingDaysDivisor int64

	// LateCutoff is the local wall-clock time ("15:04") after which a punch-in
	// is recorded as late.
	LateCutoff string

	// MinimumDailyHours is the least worked time a punch-out will accept.
	MinimumDailyHours float64

	// OvertimeEscapeHours lets a punch-out through when worked time exceeds it,
	// independent of MinimumDailyHours.
	OvertimeEscapeHours float64

	// LateComingPenalty is deducted per late day, in currency minor units.
	LateComingPenalty decimal.Decimal

	// OvertimeHourlyRate is paid per approved overtime hour, in minor units.
	OvertimeHourlyRate decimal.Decimal

	// AutoApproveMaxHours is the overtime request size at or below which the
	// request bypasses manual review.
	AutoApproveMaxHours float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Company = CompanyConfig{
		Name:       getEnv("COMPANY_NAME", "Acme Industries Pvt Ltd"),
		AddressOne: getEnv("COMPANY_ADDRESS_LINE1", "14 Industrial Estate"),
		AddressTwo: getEnv("COMPANY_ADDRESS_LINE2", "Bengaluru 560001"),
	}

	policy, err := loadPolicy()
	if err != nil {
		return nil, fmt.Errorf("invalid policy configuration: %w", err)
	}
	config.Policy = policy

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPolicy() (PolicyConfig, error) {
	divisor, err := strconv.ParseInt(getEnv("POLICY_WORKING_DAYS_DIVISOR", "26"), 10, 64)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_WORKING_DAYS_DIVISOR: %w", err)
	}

	minHours, err := strconv.ParseFloat(getEnv("POLICY_MINIMUM_DAILY_HOURS", "8.0"), 64)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_MINIMUM_DAILY_HOURS: %w", err)
	}

	escapeHours, err := strconv.ParseFloat(getEnv("POLICY_OVERTIME_ESCAPE_HOURS", "8.5"), 64)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_OVERTIME_ESCAPE_HOURS: %w", err)
	}

	latePenalty, err := decimal.NewFromString(getEnv("POLICY_LATE_COMING_PENALTY", "100"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_LATE_COMING_PENALTY: %w", err)
	}

	overtimeRate, err := decimal.NewFromString(getEnv("POLICY_OVERTIME_HOURLY_RATE", "200"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_OVERTIME_HOURLY_RATE: %w", err)
	}

	autoApprove, err := strconv.ParseFloat(getEnv("POLICY_AUTO_APPROVE_MAX_HOURS", "1.0"), 64)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_AUTO_APPROVE_MAX_HOURS: %w", err)
	}

	return PolicyConfig{
		WorkingDaysDivisor:  divisor,
		LateCutoff:          getEnv("POLICY_LATE_CUTOFF", "09:15"),
		MinimumDailyHours:   minHours,
		OvertimeEscapeHours: escapeHours,
		LateComingPenalty:   latePenalty,
		OvertimeHourlyRate:  overtimeRate,
		AutoApproveMaxHours: autoApprove,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Policy.WorkingDaysDivisor <= 0 {
		return fmt.Errorf("POLICY_WORKING_DAYS_DIVISOR must be positive")
	}
	if c.Policy.MinimumDailyHours <= 0 {
		return fmt.Errorf("POLICY_MINIMUM_DAILY_HOURS must be positive")
	}
	if c.Policy.LateComingPenalty.IsNegative() {
		return fmt.Errorf("POLICY_LATE_COMING_PENALTY must be non-negative")
	}
	if c.Policy.OvertimeHourlyRate.IsNegative() {
		return fmt.Errorf("POLICY_OVERTIME_HOURLY_RATE must be non-negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
