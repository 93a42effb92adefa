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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Upload       UploadConfig
	Advisory     AdvisoryConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"ALVARA_APP_ENV" required:"true"`
	Port         string `envconfig:"ALVARA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ALVARA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ALVARA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ALVARA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ALVARA_DB_DSN"`
	Driver string `envconfig:"ALVARA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ALVARA_DB_HOST"`
	LegacyPort     int    `envconfig:"ALVARA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ALVARA_DB_USER"`
	LegacyPassword string `envconfig:"ALVARA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ALVARA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ALVARA_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"ALVARA_SQLITE_PATH" default:"alvara.db"`

	MaxOpenConns    int           `envconfig:"ALVARA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ALVARA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ALVARA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALVARA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ALVARA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ALVARA_REDIS_ADDR"`
	Password     string        `envconfig:"ALVARA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ALVARA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ALVARA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ALVARA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ALVARA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ALVARA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ALVARA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ALVARA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ALVARA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ALVARA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ALVARA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ALVARA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ALVARA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ALVARA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ALVARA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ALVARA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"ALVARA_GCS_BUCKET_NAME" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"ALVARA_GCS_DOWNLOAD_URL_EXPIRY" default:"15m"`
}

// UploadConfig bounds license attachment uploads. The default cap is 5 MiB.
type UploadConfig struct {
	MaxUploadBytes int64 `envconfig:"ALVARA_MAX_UPLOAD_BYTES" default:"5242880"`
}

type AdvisoryConfig struct {
	APIKey   string        `envconfig:"ALVARA_GENAI_API_KEY"`
	Model    string        `envconfig:"ALVARA_GENAI_MODEL" default:"gemini-3-flash-preview"`
	Timeout  time.Duration `envconfig:"ALVARA_GENAI_TIMEOUT" default:"30s"`
	Debounce time.Duration `envconfig:"ALVARA_ADVISORY_DEBOUNCE" default:"2s"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"ALVARA_CRON_INTERVAL" default:"24h"`
	MetricsAddr string        `envconfig:"ALVARA_CRON_METRICS_ADDR" default:":9100"`
}

type RateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"ALVARA_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"ALVARA_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
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
