package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DISPUTEDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DISPUTEDESK_DB_DSN"
	EnvDBHost = "DISPUTEDESK_DB_HOST"
	EnvDBUser = "DISPUTEDESK_DB_USER"
	EnvDBName = "DISPUTEDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Storage      StorageConfig
	Evidence     EvidenceConfig
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
	Env          string `envconfig:"DISPUTEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"DISPUTEDESK_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"DISPUTEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISPUTEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DISPUTEDESK_DB_DSN"`
	Driver string `envconfig:"DISPUTEDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DISPUTEDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"DISPUTEDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DISPUTEDESK_DB_USER"`
	LegacyPassword string `envconfig:"DISPUTEDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"DISPUTEDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"DISPUTEDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISPUTEDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISPUTEDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISPUTEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISPUTEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: when URL and Address are both empty the
// idempotency middleware is disabled rather than failing bootstrap.
type RedisConfig struct {
	URL          string        `envconfig:"DISPUTEDESK_REDIS_URL"`
	Address      string        `envconfig:"DISPUTEDESK_REDIS_ADDR"`
	Password     string        `envconfig:"DISPUTEDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISPUTEDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISPUTEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISPUTEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISPUTEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISPUTEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISPUTEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig is optional: without a secret the API falls back to the demo
// identity resolver.
type JWTConfig struct {
	Secret            string `envconfig:"DISPUTEDESK_JWT_SECRET"`
	Issuer            string `envconfig:"DISPUTEDESK_JWT_ISSUER" default:"disputedesk"`
	ExpirationMinutes int    `envconfig:"DISPUTEDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

// StripeConfig carries the external dispute API credential. An empty key is
// tolerated: dispute and packet endpoints degrade to 503 instead of the
// process refusing to start.
type StripeConfig struct {
	APIKey string `envconfig:"DISPUTEDESK_STRIPE_API_KEY"`
	Env    string `envconfig:"DISPUTEDESK_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (s StripeConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type StorageConfig struct {
	UploadsDir string `envconfig:"DISPUTEDESK_STORAGE_UPLOADS_DIR" default:"data/uploads"`
	PacketsDir string `envconfig:"DISPUTEDESK_STORAGE_PACKETS_DIR" default:"data/packets"`
}

type EvidenceConfig struct {
	MaxUploadMB int `envconfig:"DISPUTEDESK_EVIDENCE_MAX_UPLOAD_MB" default:"2"`
}

// MaxUploadBytes is the upload ceiling enforced before any row or blob is
// written.
func (e EvidenceConfig) MaxUploadBytes() int64 {
	return int64(e.MaxUploadMB) * 1024 * 1024
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DISPUTEDESK_AUTO_MIGRATE" default:"false"`
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
