package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Airtable AirtableConfig
	Media    MediaConfig
	Redis    RedisConfig
	Sync     SyncConfig
	Flags    FeatureFlagsConfig
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
	Env          string `envconfig:"CATALOG_APP_ENV" default:"dev"`
	Port         string `envconfig:"CATALOG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ServiceConfig lets deployments override the logical service name reported
// in logs, e.g. to tell two sync workers apart.
type ServiceConfig struct {
	Kind string `envconfig:"CATALOG_SERVICE_KIND"`
}

// NameOr returns the configured service kind, or the binary's default.
func (s ServiceConfig) NameOr(fallback string) string {
	if kind := strings.TrimSpace(s.Kind); kind != "" {
		return kind
	}
	return fallback
}

type DBConfig struct {
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"CATALOG_DB_DSN"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLitePath
		return nil
	}
	return fmt.Errorf("%s is required for driver %q", EnvDBDSN, db.Driver)
}

// AirtableConfig holds the credentials and table coordinates for the remote
// catalog base. Token and BaseID are validated by the sync entrypoint rather
// than at Load time so read-only services can boot without them.
type AirtableConfig struct {
	Token           string `envconfig:"CATALOG_AIRTABLE_TOKEN"`
	BaseID          string `envconfig:"CATALOG_AIRTABLE_BASE_ID"`
	BaseURL         string `envconfig:"CATALOG_AIRTABLE_BASE_URL" default:"https://api.airtable.com/v0"`
	ItemsTable      string `envconfig:"CATALOG_AIRTABLE_ITEMS_TABLE" default:"tblVKOTcBAJTYpBau"`
	AttributesTable string `envconfig:"CATALOG_AIRTABLE_ATTRIBUTES_TABLE" default:"tblNvN1I84izhSlzn"`
}

func (a AirtableConfig) Validate() error {
	if strings.TrimSpace(a.Token) == "" || strings.TrimSpace(a.BaseID) == "" {
		return errors.New("CATALOG_AIRTABLE_TOKEN and CATALOG_AIRTABLE_BASE_ID are required")
	}
	return nil
}

type MediaConfig struct {
	Dir          string        `envconfig:"CATALOG_MEDIA_DIR" default:"assets/images/shop"`
	PublicPrefix string        `envconfig:"CATALOG_MEDIA_PUBLIC_PREFIX" default:"assets/images/shop"`
	FetchTimeout time.Duration `envconfig:"CATALOG_MEDIA_FETCH_TIMEOUT" default:"30s"`
}

// RedisConfig is optional: when URL is empty the sync run lock is skipped and
// the API readiness probe ignores redis.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type SyncConfig struct {
	LockTTL time.Duration `envconfig:"CATALOG_SYNC_LOCK_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
}
