package config

const EnvPrefix = "WISHLIST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	OutboxTransportPubSub = "pubsub"
	OutboxTransportKafka  = "kafka"
)

const (
	EnvAppEnv                 = "WISHLIST_APP_ENV"
	EnvPort                   = "WISHLIST_APP_PORT"
	EnvDBDSN                  = "WISHLIST_DB_DSN"
	EnvDBHost                 = "WISHLIST_DB_HOST"
	EnvDBUser                 = "WISHLIST_DB_USER"
	EnvDBName                 = "WISHLIST_DB_NAME"
	EnvRedisURL               = "WISHLIST_REDIS_URL"
	EnvJWTSecret              = "WISHLIST_JWT_SECRET"
	EnvJWTIssuer              = "WISHLIST_JWT_ISSUER"
	EnvJWTExpMins             = "WISHLIST_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WISHLIST_REFRESH_TOKEN_TTL_MINUTES"
	EnvPriceLock              = "WISHLIST_PRICE_LOCK"
	EnvMultiple               = "WISHLIST_MULTIPLE"
	EnvOutboxTransport        = "WISHLIST_OUTBOX_TRANSPORT"
	EnvKafkaBrokers           = "WISHLIST_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
