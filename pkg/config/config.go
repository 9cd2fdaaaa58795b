package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.Engine().Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SUQ_APP_ENV" required:"true"`
	Port         string `envconfig:"SUQ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SUQ_DB_DSN"`
	Driver string `envconfig:"SUQ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUQ_DB_HOST"`
	LegacyPort     int    `envconfig:"SUQ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUQ_DB_USER"`
	LegacyPassword string `envconfig:"SUQ_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUQ_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUQ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUQ_REDIS_ADDR"`
	Password     string        `envconfig:"SUQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SUQ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUQ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SUQ_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig carries the platform-wide pricing constants. Amounts are
// integer cents; rates are decimal strings ("0.15" is the 15% VAT).
type PricingConfig struct {
	FreeShippingThresholdCents int64           `envconfig:"SUQ_PRICING_FREE_SHIPPING_THRESHOLD_CENTS" default:"200000"`
	FlatShippingCostCents      int64           `envconfig:"SUQ_PRICING_FLAT_SHIPPING_COST_CENTS" default:"10000"`
	TaxRate                    decimal.Decimal `envconfig:"SUQ_PRICING_TAX_RATE" default:"0.15"`
	CommissionRate             decimal.Decimal `envconfig:"SUQ_PRICING_COMMISSION_RATE" default:"0.10"`
}

// Engine returns the pricing engine configuration.
func (p PricingConfig) Engine() pricing.Config {
	return pricing.Config{
		FreeShippingThresholdCents: p.FreeShippingThresholdCents,
		FlatShippingCostCents:      p.FlatShippingCostCents,
		TaxRate:                    p.TaxRate,
		CommissionRate:             p.CommissionRate,
	}
}

type CheckoutConfig struct {
	// SessionTTL bounds how long an abandoned checkout session survives in
	// Redis before it expires and the flow has to start over.
	SessionTTL time.Duration `envconfig:"SUQ_CHECKOUT_SESSION_TTL" default:"30m"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"SUQ_CRON_INTERVAL" default:"24h"`
	LockTTL      time.Duration `envconfig:"SUQ_CRON_LOCK_TTL" default:"25h"`
	CartStaleAge time.Duration `envconfig:"SUQ_CRON_CART_STALE_AGE" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUQ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUQ_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
