package config

// EnvPrefix is handed to envconfig; every field carries its full CARTLINE_* name as an alt key.
const EnvPrefix = "CARTLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "CARTLINE_APP_ENV"
	EnvPort      = "CARTLINE_APP_PORT"
	EnvLogLevel  = "CARTLINE_LOG_LEVEL"
	EnvLogFormat = "CARTLINE_LOG_FORMAT"

	EnvDBDSN    = "CARTLINE_DB_DSN"
	EnvDBDriver = "CARTLINE_DB_DRIVER"
	EnvDBHost   = "CARTLINE_DB_HOST"
	EnvDBUser   = "CARTLINE_DB_USER"
	EnvDBName   = "CARTLINE_DB_NAME"

	EnvRedisURL = "CARTLINE_REDIS_URL"

	EnvJWTSecret              = "CARTLINE_JWT_SECRET"
	EnvJWTIssuer              = "CARTLINE_JWT_ISSUER"
	EnvJWTExpMins             = "CARTLINE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CARTLINE_REFRESH_TOKEN_TTL_MINUTES"

	EnvReferenceCurrency = "CARTLINE_REFERENCE_CURRENCY"
	EnvCurrencyRates     = "CARTLINE_CURRENCY_RATES"

	EnvStorageDriver = "CARTLINE_STORAGE_DRIVER"
	EnvGCSBucket     = "CARTLINE_GCS_BUCKET_NAME"
	EnvLocalDir      = "CARTLINE_STORAGE_LOCAL_DIR"

	EnvAMQPURL = "CARTLINE_AMQP_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
