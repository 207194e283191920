package config

const (
	EnvPrefix = "catalog"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLitePath = "data/catalog.db"

	EnvAppEnv        = "CATALOG_APP_ENV"
	EnvServiceKind   = "CATALOG_SERVICE_KIND"
	EnvPort          = "CATALOG_APP_PORT"
	EnvDBDriver      = "CATALOG_DB_DRIVER"
	EnvDBDSN         = "CATALOG_DB_DSN"
	EnvRedisURL      = "CATALOG_REDIS_URL"
	EnvAirtableToken = "CATALOG_AIRTABLE_TOKEN"
	EnvAirtableBase  = "CATALOG_AIRTABLE_BASE_ID"
)
