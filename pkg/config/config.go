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
	JWT          JWTConfig
	PayGate      PayGateConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Email        EmailConfig
	Realtime     RealtimeConfig
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
	Env          string `envconfig:"BIDKART_APP_ENV" required:"true"`
	Port         string `envconfig:"BIDKART_APP_PORT" required:"true"`
	ClientURL    string `envconfig:"BIDKART_CLIENT_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"BIDKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BIDKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BIDKART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BIDKART_DB_DSN"`
	Driver string `envconfig:"BIDKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BIDKART_DB_HOST"`
	LegacyPort     int    `envconfig:"BIDKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BIDKART_DB_USER"`
	LegacyPassword string `envconfig:"BIDKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"BIDKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"BIDKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BIDKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BIDKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BIDKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIDKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BIDKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BIDKART_REDIS_ADDR"`
	Password     string        `envconfig:"BIDKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIDKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIDKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIDKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIDKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIDKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BIDKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BIDKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BIDKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BIDKART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PayGateConfig holds credentials for the external payment gateway.
type PayGateConfig struct {
	BaseURL   string        `envconfig:"BIDKART_PAYGATE_BASE_URL" default:"https://api.razorpay.com"`
	KeyID     string        `envconfig:"BIDKART_PAYGATE_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"BIDKART_PAYGATE_KEY_SECRET" required:"true"`
	Currency  string        `envconfig:"BIDKART_PAYGATE_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"BIDKART_PAYGATE_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BIDKART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BIDKART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BIDKART_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BIDKART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BIDKART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"BIDKART_PUBSUB_DOMAIN_TOPIC" default:"bk-domain-events"`
	EmailSubscription  string `envconfig:"BIDKART_PUBSUB_EMAIL_SUBSCRIPTION" required:"true"`
	DomainSubscription string `envconfig:"BIDKART_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BIDKART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BIDKART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BIDKART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EmailConfig struct {
	APIKey      string `envconfig:"BIDKART_EMAIL_API_KEY"`
	DefaultFrom string `envconfig:"BIDKART_EMAIL_FROM" default:"orders@bidkart.in"`
}

type RealtimeConfig struct {
	SendBuffer        int           `envconfig:"BIDKART_REALTIME_SEND_BUFFER" default:"32"`
	HeartbeatInterval time.Duration `envconfig:"BIDKART_REALTIME_HEARTBEAT" default:"25s"`
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
