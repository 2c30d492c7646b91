package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Currency      CurrencyConfig
	Storage       StorageConfig
	GCP           GCPConfig
	Media         MediaConfig
	Events        EventsConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTLINE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTLINE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CARTLINE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CARTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARTLINE_DB_DSN"`
	Driver string `envconfig:"CARTLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTLINE_DB_USER"`
	LegacyPassword string `envconfig:"CARTLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTLINE_REDIS_URL"`
	Address      string        `envconfig:"CARTLINE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CARTLINE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CARTLINE_JWT_ISSUER" default:"cartline"`
	ExpirationMinutes      int    `envconfig:"CARTLINE_JWT_EXPIRATION_MINUTES" default:"600"`
	RefreshTokenTTLMinutes int    `envconfig:"CARTLINE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARTLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARTLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARTLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARTLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARTLINE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"CARTLINE_AUTO_MIGRATE" default:"false"`
	EnableMetrics bool `envconfig:"CARTLINE_ENABLE_METRICS" default:"true"`
}

// CurrencyConfig describes how product prices are normalised before they reach a cart.
// Rates are "units of reference currency per one unit of the keyed currency".
type CurrencyConfig struct {
	Reference string            `envconfig:"CARTLINE_REFERENCE_CURRENCY" default:"INR"`
	Rates     map[string]string `envconfig:"CARTLINE_CURRENCY_RATES" default:"USD:83.00,EUR:90.00,GBP:105.00"`
}

type StorageConfig struct {
	Driver        string `envconfig:"CARTLINE_STORAGE_DRIVER" default:"local"`
	BucketName    string `envconfig:"CARTLINE_GCS_BUCKET_NAME"`
	LocalDir      string `envconfig:"CARTLINE_STORAGE_LOCAL_DIR" default:"./uploads"`
	PublicBaseURL string `envconfig:"CARTLINE_STORAGE_PUBLIC_BASE_URL" default:"http://localhost:8080/uploads"`
}

// UsesGCS reports whether uploads should be written to Google Cloud Storage.
func (s StorageConfig) UsesGCS() bool {
	return strings.EqualFold(strings.TrimSpace(s.Driver), "gcs")
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "gcs":
		if strings.TrimSpace(s.BucketName) == "" {
			return fmt.Errorf("%s is required when storage driver is gcs", EnvGCSBucket)
		}
	case "local", "":
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required when storage driver is local", EnvLocalDir)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARTLINE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CARTLINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARTLINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"CARTLINE_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured limit into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type EventsConfig struct {
	AMQPURL  string `envconfig:"CARTLINE_AMQP_URL"`
	Exchange string `envconfig:"CARTLINE_AMQP_EXCHANGE" default:"cartline.orders"`
}

// Enabled reports whether an AMQP broker was configured.
func (e EventsConfig) Enabled() bool {
	return strings.TrimSpace(e.AMQPURL) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CARTLINE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
