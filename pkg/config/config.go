package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ORDERTRACKER"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, docs).
const (
	EnvAppEnv       = "ORDERTRACKER_APP_ENV"
	EnvPort         = "ORDERTRACKER_APP_PORT"
	EnvShopifyURL   = "ORDERTRACKER_SHOPIFY_URL"
	EnvShopifyToken = "ORDERTRACKER_SHOPIFY_ACCESS_TOKEN"
	EnvEtsyShopID   = "ORDERTRACKER_ETSY_SHOP_ID"
	EnvCatalogDSN   = "ORDERTRACKER_CATALOG_DB_DSN"
	EnvRedisURL     = "ORDERTRACKER_REDIS_URL"
)

type Config struct {
	App     AppConfig
	Shopify ShopifyConfig
	Etsy    EtsyConfig
	Catalog CatalogDBConfig
	Redis   RedisConfig
	Poll    PollConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERTRACKER_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERTRACKER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERTRACKER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERTRACKER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ShopifyConfig carries the static-token storefront credentials.
type ShopifyConfig struct {
	BaseURL     string        `envconfig:"ORDERTRACKER_SHOPIFY_URL"`
	AccessToken string        `envconfig:"ORDERTRACKER_SHOPIFY_ACCESS_TOKEN"`
	HTTPTimeout time.Duration `envconfig:"ORDERTRACKER_SHOPIFY_HTTP_TIMEOUT" default:"30s"`
}

// EtsyConfig carries the OAuth marketplace credentials. Keystring and
// shared secret identify the app; the refresh token lives in the
// credentials file, not the environment.
type EtsyConfig struct {
	Keystring       string        `envconfig:"ORDERTRACKER_ETSY_KEYSTRING"`
	SharedSecret    string        `envconfig:"ORDERTRACKER_ETSY_SECRET"`
	ShopID          string        `envconfig:"ORDERTRACKER_ETSY_SHOP_ID"`
	CredentialsPath string        `envconfig:"ORDERTRACKER_ETSY_CREDENTIALS_PATH" default:"/data/etsy_oauth.json"`
	BaseURL         string        `envconfig:"ORDERTRACKER_ETSY_BASE_URL" default:"https://api.etsy.com/v3/application"`
	TokenURL        string        `envconfig:"ORDERTRACKER_ETSY_TOKEN_URL" default:"https://api.etsy.com/v3/public/oauth/token"`
	HTTPTimeout     time.Duration `envconfig:"ORDERTRACKER_ETSY_HTTP_TIMEOUT" default:"30s"`
}

// XAPIKey builds the x-api-key header value Etsy expects.
func (e EtsyConfig) XAPIKey() string {
	return fmt.Sprintf("%s:%s", e.Keystring, e.SharedSecret)
}

// CatalogDBConfig points at the read-only piece-cost catalog database.
type CatalogDBConfig struct {
	DSN    string `envconfig:"ORDERTRACKER_CATALOG_DB_DSN"`
	Driver string `envconfig:"ORDERTRACKER_CATALOG_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"ORDERTRACKER_CATALOG_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"ORDERTRACKER_CATALOG_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERTRACKER_CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERTRACKER_CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERTRACKER_REDIS_URL"`
	Address      string        `envconfig:"ORDERTRACKER_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERTRACKER_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERTRACKER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERTRACKER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERTRACKER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERTRACKER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERTRACKER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERTRACKER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PollConfig tunes the snapshot refresh worker.
type PollConfig struct {
	Interval    time.Duration `envconfig:"ORDERTRACKER_POLL_INTERVAL" default:"10m"`
	SnapshotTTL time.Duration `envconfig:"ORDERTRACKER_SNAPSHOT_TTL" default:"1h"`
	LockTTL     time.Duration `envconfig:"ORDERTRACKER_POLL_LOCK_TTL" default:"9m"`
	MetricsPort string        `envconfig:"ORDERTRACKER_METRICS_PORT" default:"9091"`
}
