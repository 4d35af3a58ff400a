package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every QuickShop environment variable.
	EnvPrefix = "QUICKSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "QUICKSHOP_DB_DSN"
	EnvDBHost = "QUICKSHOP_DB_HOST"
	EnvDBUser = "QUICKSHOP_DB_USER"
	EnvDBName = "QUICKSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pricing      PricingConfig
	RateLimit    RateLimitConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUICKSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"QUICKSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUICKSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUICKSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUICKSHOP_DB_DSN"`
	Driver string `envconfig:"QUICKSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUICKSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"QUICKSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUICKSHOP_DB_USER"`
	LegacyPassword string `envconfig:"QUICKSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUICKSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUICKSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUICKSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUICKSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUICKSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUICKSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUICKSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUICKSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"QUICKSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUICKSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUICKSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUICKSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUICKSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"QUICKSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"QUICKSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"QUICKSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig bounds the inputs a single engine invocation accepts.
type PricingConfig struct {
	MaxCartLines   int `envconfig:"QUICKSHOP_PRICING_MAX_CART_LINES" default:"200"`
	MaxActiveRules int `envconfig:"QUICKSHOP_PRICING_MAX_ACTIVE_RULES" default:"100"`
}

// RateLimitConfig throttles the storefront pricing surface per client IP.
type RateLimitConfig struct {
	Window        time.Duration `envconfig:"QUICKSHOP_RATE_LIMIT_WINDOW" default:"1m"`
	QuoteLimit    int           `envconfig:"QUICKSHOP_RATE_LIMIT_QUOTE" default:"120"`
	CheckoutLimit int           `envconfig:"QUICKSHOP_RATE_LIMIT_CHECKOUT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUICKSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUICKSHOP_AUTO_MIGRATE" default:"false"`
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
