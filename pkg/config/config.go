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
	Wishlist      WishlistConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Kafka         KafkaConfig
	Outbox        OutboxConfig
	Maintenance   MaintenanceConfig
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
	Env          string `envconfig:"WISHLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHLIST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WISHLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WISHLIST_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"WISHLIST_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WISHLIST_DB_DSN"`
	Driver string `envconfig:"WISHLIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WISHLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"WISHLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WISHLIST_DB_USER"`
	LegacyPassword string `envconfig:"WISHLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WISHLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WISHLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WISHLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WISHLIST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WISHLIST_REDIS_ADDR"`
	Password     string        `envconfig:"WISHLIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHLIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WISHLIST_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WISHLIST_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WISHLIST_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WISHLIST_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WISHLIST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WISHLIST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WISHLIST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WISHLIST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WISHLIST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WISHLIST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WISHLIST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WISHLIST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WISHLIST_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WISHLIST_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WISHLIST_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// WishlistConfig carries the storefront wishlist behaviour switches.
type WishlistConfig struct {
	// PriceLock stores the variant price on add and reuses it when the item moves to the cart.
	PriceLock bool `envconfig:"WISHLIST_PRICE_LOCK" default:"false"`
	// Multiple allows a user to own more than one wishlist.
	Multiple        bool          `envconfig:"WISHLIST_MULTIPLE" default:"false"`
	DefaultTitle    string        `envconfig:"WISHLIST_DEFAULT_TITLE" default:"My wishlist"`
	DefaultChannel  string        `envconfig:"WISHLIST_DEFAULT_CHANNEL" default:"default"`
	DefaultLocale   string        `envconfig:"WISHLIST_DEFAULT_LOCALE" default:"en"`
	DefaultCurrency string        `envconfig:"WISHLIST_DEFAULT_CURRENCY" default:"USD"`
	FlashTTL        time.Duration `envconfig:"WISHLIST_FLASH_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WISHLIST_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxAgeSeconds  int      `envconfig:"WISHLIST_CORS_MAX_AGE" default:"300"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"WISHLIST_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	WishlistTopic string `envconfig:"WISHLIST_PUBSUB_WISHLIST_TOPIC" default:"wishlist-events"`
}

type KafkaConfig struct {
	Brokers       []string `envconfig:"WISHLIST_KAFKA_BROKERS"`
	WishlistTopic string   `envconfig:"WISHLIST_KAFKA_WISHLIST_TOPIC" default:"wishlist-events"`
}

type OutboxConfig struct {
	Transport        string        `envconfig:"WISHLIST_OUTBOX_TRANSPORT" default:"pubsub"`
	BatchSize        int           `envconfig:"WISHLIST_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS   int           `envconfig:"WISHLIST_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts      int           `envconfig:"WISHLIST_OUTBOX_MAX_ATTEMPTS" default:"10"`
	BreakerFailures  uint32        `envconfig:"WISHLIST_OUTBOX_BREAKER_FAILURES" default:"5"`
	BreakerOpenDelay time.Duration `envconfig:"WISHLIST_OUTBOX_BREAKER_OPEN_DELAY" default:"30s"`
}

// NormalizedTransport returns the lower-cased outbox transport name.
func (o OutboxConfig) NormalizedTransport() string {
	transport := strings.ToLower(strings.TrimSpace(o.Transport))
	if transport == "" {
		return OutboxTransportPubSub
	}
	return transport
}

// MaintenanceConfig drives the maintenance worker.
type MaintenanceConfig struct {
	Interval            time.Duration `envconfig:"WISHLIST_MAINTENANCE_INTERVAL" default:"1h"`
	LockTTL             time.Duration `envconfig:"WISHLIST_MAINTENANCE_LOCK_TTL" default:"55m"`
	OutboxRetentionDays int           `envconfig:"WISHLIST_OUTBOX_RETENTION_DAYS" default:"30"`
	EmptyCartTTL        time.Duration `envconfig:"WISHLIST_EMPTY_CART_TTL" default:"720h"`
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
