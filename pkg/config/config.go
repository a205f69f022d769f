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
	Wizard       WizardConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
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
	Env          string `envconfig:"OPTICA_APP_ENV" required:"true"`
	Port         string `envconfig:"OPTICA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OPTICA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OPTICA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OPTICA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"OPTICA_DB_DSN"`
	Driver string `envconfig:"OPTICA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OPTICA_DB_HOST"`
	LegacyPort     int    `envconfig:"OPTICA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OPTICA_DB_USER"`
	LegacyPassword string `envconfig:"OPTICA_DB_PASSWORD"`
	LegacyName     string `envconfig:"OPTICA_DB_NAME"`
	LegacySSLMode  string `envconfig:"OPTICA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OPTICA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OPTICA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OPTICA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OPTICA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Zero disables slow query logging entirely.
	SlowQueryThreshold time.Duration `envconfig:"OPTICA_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OPTICA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"OPTICA_REDIS_ADDR"`
	Password     string        `envconfig:"OPTICA_REDIS_PASSWORD"`
	DB           int           `envconfig:"OPTICA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OPTICA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OPTICA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OPTICA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OPTICA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OPTICA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OPTICA_AUTO_MIGRATE" default:"false"`
}

// WizardConfig tunes the lens configuration wizard.
type WizardConfig struct {
	// ConfigTTL is how long an abandoned configuration stays resumable.
	ConfigTTL time.Duration `envconfig:"OPTICA_WIZARD_CONFIG_TTL" default:"72h"`
	// LockTTL bounds how long a per-configuration write lock can be held.
	LockTTL time.Duration `envconfig:"OPTICA_WIZARD_LOCK_TTL" default:"10s"`
	// PDToleranceMM is the allowed gap between totalPD and the monocular sum.
	// The 2mm default mirrors the storefront's historical rule; it is not a
	// cited optical standard, so it stays configurable.
	PDToleranceMM string `envconfig:"OPTICA_WIZARD_PD_TOLERANCE_MM" default:"2"`
}

// RateLimitConfig throttles wizard transitions. Zero limits disable the
// middleware entirely.
type RateLimitConfig struct {
	WizardWindow        time.Duration `envconfig:"OPTICA_RATE_LIMIT_WIZARD_WINDOW" default:"1m"`
	WizardIPLimit       int           `envconfig:"OPTICA_RATE_LIMIT_WIZARD_IP_LIMIT" default:"120"`
	WizardCustomerLimit int           `envconfig:"OPTICA_RATE_LIMIT_WIZARD_CUSTOMER_LIMIT" default:"60"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"OPTICA_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"OPTICA_CRON_LOCK_TTL" default:"55m"`
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
