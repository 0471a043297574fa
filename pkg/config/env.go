package config

const (
	EnvPrefix = "CITYCARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "CITYCARE_APP_ENV"
	EnvPort         = "CITYCARE_APP_PORT"
	EnvLogLevel     = "CITYCARE_LOG_LEVEL"
	EnvAPIBaseURL   = "CITYCARE_API_BASE_URL"
	EnvImageBaseURL = "CITYCARE_IMAGE_BASE_URL"
	EnvAPITimeout   = "CITYCARE_API_TIMEOUT"
	EnvLocalStore   = "CITYCARE_LOCAL_STORE"
	EnvDBDSN        = "CITYCARE_DB_DSN"
	EnvDBDriver     = "CITYCARE_DB_DRIVER"
	EnvRedisURL     = "CITYCARE_REDIS_URL"
	EnvPlatformFee  = "CITYCARE_PLATFORM_FEE_PAISA"
	EnvGatewayKey   = "CITYCARE_GATEWAY_KEY"
	EnvCORSOrigins  = "CITYCARE_CORS_ORIGINS"
)

// Local store backends.
const (
	LocalStoreMemory = "memory"
	LocalStoreRedis  = "redis"
	LocalStoreSQL    = "sql"
)
