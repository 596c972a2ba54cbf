package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	LogLevel            string

	OwnershipSource      string
	KafkaBrokers         string
	KafkaTopic           string
	ReconcileConcurrency int
	DefaultBondRate      decimal.Decimal
	DefaultBondMaturity  int
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("OWNERSHIP_SOURCE", "explicit")
	v.SetDefault("KAFKA_TOPIC", "ledger-events")
	v.SetDefault("RECONCILE_CONCURRENCY", 4)
	v.SetDefault("DEFAULT_BOND_RATE", "5")
	v.SetDefault("DEFAULT_BOND_MATURITY_MONTHS", 12)

	env := strings.ToLower(v.GetString("APP_ENV"))
	dbURL := v.GetString("DATABASE_URL_DEV")
	switch env {
	case "production":
		dbURL = v.GetString("DATABASE_URL_PROD")
	case "test":
		dbURL = v.GetString("DATABASE_URL_TEST")
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(v.GetString("DEFAULT_BOND_RATE")))
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   v.GetBool("ALLOW_CROSS_SITE_DEV"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),

		OwnershipSource:      strings.ToLower(strings.TrimSpace(v.GetString("OWNERSHIP_SOURCE"))),
		KafkaBrokers:         v.GetString("KAFKA_BROKERS"),
		KafkaTopic:           v.GetString("KAFKA_TOPIC"),
		ReconcileConcurrency: v.GetInt("RECONCILE_CONCURRENCY"),
		DefaultBondRate:      rate,
		DefaultBondMaturity:  v.GetInt("DEFAULT_BOND_MATURITY_MONTHS"),
	}, nil
}
