package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration is the root application config, loaded from
// config/config.yaml and TIFFINLY_* environment variables.
type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Cron     CronConfig     `mapstructure:"cron"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	MigrationsTable string `mapstructure:"migrations_table"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RazorpayConfig struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
}

// BillingConfig carries the tunables of the billing engine.
type BillingConfig struct {
	// MaxPaymentAttempts is the bound on per-invoice charge attempts
	// before the owning subscriptions are paused.
	MaxPaymentAttempts int `mapstructure:"max_payment_attempts"`
	// PaymentRetryBatchSize caps invoices picked up per retry run.
	PaymentRetryBatchSize int `mapstructure:"payment_retry_batch_size"`
	// RenewalBatchSize caps due groups processed per renewal run.
	RenewalBatchSize int `mapstructure:"renewal_batch_size"`
	// OrderGenerationBatchSize caps paid invoices expanded per run.
	OrderGenerationBatchSize int `mapstructure:"order_generation_batch_size"`
	// DefaultMaxPauseDays applies when a subscription has no explicit limit.
	DefaultMaxPauseDays int `mapstructure:"default_max_pause_days"`
	// CreditExpiryDays is the lifetime of skip/holiday credits.
	CreditExpiryDays int `mapstructure:"credit_expiry_days"`
	// ConversionCreditExpiryDays is the lifetime of auto-cancel
	// conversion credits written against the customer.
	ConversionCreditExpiryDays int `mapstructure:"conversion_credit_expiry_days"`
}

type CronConfig struct {
	// Secret is the shared bearer token required on /jobs routes.
	Secret string `mapstructure:"secret"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewConfig loads configuration from file and environment.
func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Optional .env for local development.
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TIFFINLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "tiffinly")
	v.SetDefault("postgres.dbname", "tiffinly")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.auto_migrate", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("billing.max_payment_attempts", 3)
	v.SetDefault("billing.payment_retry_batch_size", 50)
	v.SetDefault("billing.renewal_batch_size", 100)
	v.SetDefault("billing.order_generation_batch_size", 50)
	v.SetDefault("billing.default_max_pause_days", 30)
	v.SetDefault("billing.credit_expiry_days", 90)
	v.SetDefault("billing.conversion_credit_expiry_days", 365)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}

// GetDefaultConfig returns a config suitable for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server:  ServerConfig{Address: ":8080"},
		Logging: LoggingConfig{Level: "debug"},
		Billing: BillingConfig{
			MaxPaymentAttempts:         3,
			PaymentRetryBatchSize:      50,
			RenewalBatchSize:           100,
			OrderGenerationBatchSize:   50,
			DefaultMaxPauseDays:        30,
			CreditExpiryDays:           90,
			ConversionCreditExpiryDays: 365,
		},
		Cron: CronConfig{Secret: "test-secret"},
	}
}
