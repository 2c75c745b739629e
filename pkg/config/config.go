package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is intentionally empty: each field carries its fully
	// qualified GEMCIRCLE_* variable name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	GroupPurchase GroupPurchaseConfig
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
	Env          string `envconfig:"GEMCIRCLE_APP_ENV" required:"true"`
	Port         string `envconfig:"GEMCIRCLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GEMCIRCLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEMCIRCLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GEMCIRCLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GEMCIRCLE_DB_DSN"`
	Driver string `envconfig:"GEMCIRCLE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GEMCIRCLE_DB_HOST"`
	Port     int    `envconfig:"GEMCIRCLE_DB_PORT" default:"5432"`
	User     string `envconfig:"GEMCIRCLE_DB_USER"`
	Password string `envconfig:"GEMCIRCLE_DB_PASSWORD"`
	Name     string `envconfig:"GEMCIRCLE_DB_NAME"`
	SSLMode  string `envconfig:"GEMCIRCLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GEMCIRCLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GEMCIRCLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GEMCIRCLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GEMCIRCLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either GEMCIRCLE_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"GEMCIRCLE_REDIS_URL"`
	Address      string        `envconfig:"GEMCIRCLE_REDIS_ADDR"`
	Password     string        `envconfig:"GEMCIRCLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEMCIRCLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEMCIRCLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEMCIRCLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEMCIRCLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEMCIRCLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEMCIRCLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GEMCIRCLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GEMCIRCLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GEMCIRCLE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GEMCIRCLE_FEATURE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GEMCIRCLE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	PurchasesTopic        string `envconfig:"GEMCIRCLE_PUBSUB_PURCHASES_TOPIC" default:"group-purchase-events"`
	PurchasesSubscription string `envconfig:"GEMCIRCLE_PUBSUB_PURCHASES_SUBSCRIPTION" default:"group-purchase-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"GEMCIRCLE_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"GEMCIRCLE_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"GEMCIRCLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"GEMCIRCLE_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"GEMCIRCLE_CRON_INTERVAL" default:"5m"`
	NotificationDays     int           `envconfig:"GEMCIRCLE_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
	ExpirySweepBatchSize int           `envconfig:"GEMCIRCLE_CRON_EXPIRY_SWEEP_BATCH" default:"200"`
}

type GroupPurchaseConfig struct {
	MaxConflictRetries int `envconfig:"GEMCIRCLE_GP_MAX_CONFLICT_RETRIES" default:"5"`
}
