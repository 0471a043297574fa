package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	API          APIConfig
	Checkout     CheckoutConfig
	Gateway      GatewayConfig
	LocalStore   LocalStoreConfig
	DB           DBConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Devices      DevicesConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CITYCARE_APP_ENV" required:"true"`
	Port         string `envconfig:"CITYCARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CITYCARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CITYCARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the storefront at the remote CityCare REST API.
type APIConfig struct {
	BaseURL      string        `envconfig:"CITYCARE_API_BASE_URL" default:"https://citycare.thynxai.cloud/api"`
	ImageBaseURL string        `envconfig:"CITYCARE_IMAGE_BASE_URL" default:"https://citycaretest.s3.ap-south-2.amazonaws.com/"`
	Timeout      time.Duration `envconfig:"CITYCARE_API_TIMEOUT" default:"15s"`
	Role         string        `envconfig:"CITYCARE_API_ROLE" default:"customer"`
}

type CheckoutConfig struct {
	PlatformFeePaisa int64 `envconfig:"CITYCARE_PLATFORM_FEE_PAISA" default:"4900"`
	FirstSlotHour    int   `envconfig:"CITYCARE_FIRST_SLOT_HOUR" default:"9"`
	LastSlotHour     int   `envconfig:"CITYCARE_LAST_SLOT_HOUR" default:"20"`
	// SlotLeadTime is how far ahead of now a same-day slot must start.
	SlotLeadTime    time.Duration `envconfig:"CITYCARE_SLOT_LEAD_TIME" default:"1h"`
	InstantDelay    time.Duration `envconfig:"CITYCARE_INSTANT_DELAY" default:"30m"`
	InstantDuration time.Duration `envconfig:"CITYCARE_INSTANT_DURATION" default:"60m"`
	Timezone        string        `envconfig:"CITYCARE_TIMEZONE" default:"Asia/Kolkata"`
}

// Location resolves the configured timezone, falling back to UTC.
func (c CheckoutConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// GatewayConfig carries the display defaults handed to the payment overlay.
type GatewayConfig struct {
	FallbackKey       string `envconfig:"CITYCARE_GATEWAY_KEY" default:"rzp_test_Rd82dGLg9aCywP"`
	Currency          string `envconfig:"CITYCARE_GATEWAY_CURRENCY" default:"INR"`
	BookingName       string `envconfig:"CITYCARE_GATEWAY_BOOKING_NAME" default:"City Care Connect"`
	BookingThemeColor string `envconfig:"CITYCARE_GATEWAY_BOOKING_THEME" default:"#0F172A"`
	WalletName        string `envconfig:"CITYCARE_GATEWAY_WALLET_NAME" default:"City Cares Wallet"`
	WalletThemeColor  string `envconfig:"CITYCARE_GATEWAY_WALLET_THEME" default:"#004e92"`
}

type LocalStoreConfig struct {
	Backend string `envconfig:"CITYCARE_LOCAL_STORE" default:"memory"`
}

type DBConfig struct {
	DSN    string `envconfig:"CITYCARE_DB_DSN"`
	Driver string `envconfig:"CITYCARE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"CITYCARE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CITYCARE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CITYCARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CITYCARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CITYCARE_REDIS_URL"`
	Address      string        `envconfig:"CITYCARE_REDIS_ADDR"`
	Password     string        `envconfig:"CITYCARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CITYCARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CITYCARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CITYCARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CITYCARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CITYCARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CITYCARE_REDIS_WRITE_TIMEOUT" default:"5s"`
	// LocalTTL bounds how long a device's local entries survive in redis.
	LocalTTL       time.Duration `envconfig:"CITYCARE_REDIS_LOCAL_TTL" default:"720h"`
	IdempotencyTTL time.Duration `envconfig:"CITYCARE_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CITYCARE_CORS_ORIGINS" default:"http://localhost:5000,http://localhost:3000"`
}

// DevicesConfig bounds how long an idle device's state stays in memory.
type DevicesConfig struct {
	IdleTTL       time.Duration `envconfig:"CITYCARE_DEVICE_IDLE_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"CITYCARE_DEVICE_SWEEP_INTERVAL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CITYCARE_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	c.LocalStore.Backend = strings.ToLower(strings.TrimSpace(c.LocalStore.Backend))
	switch c.LocalStore.Backend {
	case LocalStoreMemory:
	case LocalStoreRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s=redis requires %s", EnvLocalStore, EnvRedisURL)
		}
	case LocalStoreSQL:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s=sql requires %s", EnvLocalStore, EnvDBDSN)
		}
	default:
		return fmt.Errorf("unknown %s %q", EnvLocalStore, c.LocalStore.Backend)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvAPITimeout)
	}
	if c.Checkout.FirstSlotHour < 0 || c.Checkout.LastSlotHour > 23 || c.Checkout.FirstSlotHour > c.Checkout.LastSlotHour {
		return fmt.Errorf("invalid slot hours %d-%d", c.Checkout.FirstSlotHour, c.Checkout.LastSlotHour)
	}
	return nil
}
