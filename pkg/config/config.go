package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"AVOLEDGER_APP_ENV" required:"true"`
	Port         string   `envconfig:"AVOLEDGER_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"AVOLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"AVOLEDGER_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"AVOLEDGER_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AVOLEDGER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AVOLEDGER_DB_DSN"`
	Driver string `envconfig:"AVOLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AVOLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"AVOLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AVOLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"AVOLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"AVOLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"AVOLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AVOLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AVOLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AVOLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AVOLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the ledger runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables idempotency and cron locking.
type RedisConfig struct {
	URL            string        `envconfig:"AVOLEDGER_REDIS_URL"`
	Address        string        `envconfig:"AVOLEDGER_REDIS_ADDR"`
	Password       string        `envconfig:"AVOLEDGER_REDIS_PASSWORD"`
	DB             int           `envconfig:"AVOLEDGER_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"AVOLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"AVOLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"AVOLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"AVOLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"AVOLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"AVOLEDGER_REDIS_IDEMPOTENCY_TTL" default:"24h"`
	KeyNamespace   string        `envconfig:"AVOLEDGER_REDIS_NAMESPACE" default:"avl"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AVOLEDGER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AVOLEDGER_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxEnabled bool `envconfig:"AVOLEDGER_EVENTING_OUTBOX_ENABLED" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AVOLEDGER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AVOLEDGER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AVOLEDGER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LedgerTopic        string `envconfig:"AVOLEDGER_PUBSUB_LEDGER_TOPIC" default:"avoledger-ledger-events"`
	LedgerSubscription string `envconfig:"AVOLEDGER_PUBSUB_LEDGER_SUBSCRIPTION" default:"avoledger-ledger-events-sub"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AVOLEDGER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AVOLEDGER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AVOLEDGER_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"AVOLEDGER_CRON_INTERVAL" default:"15m"`
	LockTTL      time.Duration `envconfig:"AVOLEDGER_CRON_LOCK_TTL" default:"10m"`
	SweepLimit   int           `envconfig:"AVOLEDGER_CRON_SWEEP_LIMIT" default:"500"`
	OutboxMaxAge time.Duration `envconfig:"AVOLEDGER_CRON_OUTBOX_MAX_AGE" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
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
