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
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Import       ImportConfig
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
	Env          string `envconfig:"STOCKTRAIL_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKTRAIL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKTRAIL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKTRAIL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	// RequestTimeout bounds every request including the storage round trips a
	// movement performs. On expiry the operation reports failure without
	// assuming the remote mutation did or did not apply.
	RequestTimeout  time.Duration `envconfig:"STOCKTRAIL_HTTP_REQUEST_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"STOCKTRAIL_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"STOCKTRAIL_HTTP_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKTRAIL_DB_DSN"`
	Driver string `envconfig:"STOCKTRAIL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKTRAIL_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKTRAIL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKTRAIL_DB_USER"`
	LegacyPassword string `envconfig:"STOCKTRAIL_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKTRAIL_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKTRAIL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKTRAIL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKTRAIL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKTRAIL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKTRAIL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKTRAIL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKTRAIL_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKTRAIL_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKTRAIL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKTRAIL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKTRAIL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKTRAIL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKTRAIL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKTRAIL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig drives access token minting and verification.
type JWTConfig struct {
	Secret            string `envconfig:"STOCKTRAIL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKTRAIL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKTRAIL_JWT_EXPIRATION_MINUTES" default:"480"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKTRAIL_AUTO_MIGRATE" default:"false"`
}

type ImportConfig struct {
	MaxCSVRows    int `envconfig:"STOCKTRAIL_IMPORT_MAX_CSV_ROWS" default:"10000"`
	MaxUploadMB   int `envconfig:"STOCKTRAIL_IMPORT_MAX_UPLOAD_MB" default:"10"`
	SnapshotMaxMB int `envconfig:"STOCKTRAIL_SNAPSHOT_MAX_MB" default:"50"`
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
