package config

const (
	EnvPrefix = "EQUICO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	RealtimeDriverRedis  = "redis"
	RealtimeDriverPubSub = "pubsub"
)

const (
	EnvAppEnv         = "EQUICO_APP_ENV"
	EnvPort           = "EQUICO_APP_PORT"
	EnvBaseURL        = "EQUICO_BASE_URL"
	EnvDBDSN          = "EQUICO_DB_DSN"
	EnvDBHost         = "EQUICO_DB_HOST"
	EnvDBUser         = "EQUICO_DB_USER"
	EnvDBPassword     = "EQUICO_DB_PASSWORD"
	EnvDBName         = "EQUICO_DB_NAME"
	EnvRedisURL       = "EQUICO_REDIS_URL"
	EnvJWTSecret      = "EQUICO_JWT_SECRET"
	EnvJWTIssuer      = "EQUICO_JWT_ISSUER"
	EnvJWTExpMins     = "EQUICO_JWT_EXPIRATION_MINUTES"
	EnvGCSBucket      = "EQUICO_GCS_BUCKET_NAME"
	EnvRealtimeDriver = "EQUICO_REALTIME_DRIVER"
	EnvStripeMonthly  = "EQUICO_STRIPE_MONTHLY_PRICE_ID"
	EnvStripeAnnual   = "EQUICO_STRIPE_ANNUAL_PRICE_ID"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
