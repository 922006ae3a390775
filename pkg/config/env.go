package config

const (
	EnvPrefix = "AVOLEDGER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "file:avoledger.db?_foreign_keys=on"

	EnvAppEnv      = "AVOLEDGER_APP_ENV"
	EnvPort        = "AVOLEDGER_APP_PORT"
	EnvCORSOrigins = "AVOLEDGER_CORS_ORIGINS"
	EnvDBDSN       = "AVOLEDGER_DB_DSN"
	EnvDBDriver    = "AVOLEDGER_DB_DRIVER"
	EnvDBHost      = "AVOLEDGER_DB_HOST"
	EnvDBUser      = "AVOLEDGER_DB_USER"
	EnvDBPassword  = "AVOLEDGER_DB_PASSWORD"
	EnvDBName      = "AVOLEDGER_DB_NAME"
	EnvUseSQLite   = "AVOLEDGER_USE_SQLITE"
	EnvRedisURL    = "AVOLEDGER_REDIS_URL"
	EnvLedgerTopic = "AVOLEDGER_PUBSUB_LEDGER_TOPIC"
	EnvCronEvery   = "AVOLEDGER_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
