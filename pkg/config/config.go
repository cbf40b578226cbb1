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
	CORS          CORSConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Realtime      RealtimeConfig
	Stripe        StripeConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Realtime.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EQUICO_APP_ENV" required:"true"`
	Port         string `envconfig:"EQUICO_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"EQUICO_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"EQUICO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EQUICO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EQUICO_DB_DSN"`
	Driver string `envconfig:"EQUICO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"EQUICO_DB_HOST"`
	Port     int    `envconfig:"EQUICO_DB_PORT" default:"5432"`
	User     string `envconfig:"EQUICO_DB_USER"`
	Password string `envconfig:"EQUICO_DB_PASSWORD"`
	Name     string `envconfig:"EQUICO_DB_NAME"`
	SSLMode  string `envconfig:"EQUICO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EQUICO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EQUICO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EQUICO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EQUICO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EQUICO_REDIS_URL"`
	Address      string        `envconfig:"EQUICO_REDIS_ADDR"`
	Password     string        `envconfig:"EQUICO_REDIS_PASSWORD"`
	DB           int           `envconfig:"EQUICO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EQUICO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EQUICO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EQUICO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EQUICO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EQUICO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EQUICO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EQUICO_JWT_ISSUER" default:"equico"`
	ExpirationMinutes int    `envconfig:"EQUICO_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EQUICO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EQUICO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EQUICO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EQUICO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EQUICO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"EQUICO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"EQUICO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"EQUICO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"EQUICO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"EQUICO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"EQUICO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EQUICO_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EQUICO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EQUICO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"EQUICO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EQUICO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"EQUICO_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"EQUICO_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxUploadMB      int `envconfig:"EQUICO_MAX_UPLOAD_MB" default:"25"`
	MaxListingImages int `envconfig:"EQUICO_MAX_LISTING_IMAGES" default:"6"`
}

// MaxUploadBytes converts the configured upload cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 25 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	RealtimeTopic string `envconfig:"EQUICO_PUBSUB_REALTIME_TOPIC" default:"equico-realtime-events"`
}

type RealtimeConfig struct {
	Driver string `envconfig:"EQUICO_REALTIME_DRIVER" default:"redis"`
}

func (r RealtimeConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Driver)) {
	case RealtimeDriverRedis, RealtimeDriverPubSub:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvRealtimeDriver, RealtimeDriverRedis, RealtimeDriverPubSub)
	}
}

// UsesPubSub reports whether realtime events are published to Cloud Pub/Sub.
func (r RealtimeConfig) UsesPubSub() bool {
	return strings.EqualFold(strings.TrimSpace(r.Driver), RealtimeDriverPubSub)
}

type StripeConfig struct {
	APIKey         string        `envconfig:"EQUICO_STRIPE_API_KEY"`
	Secret         string        `envconfig:"EQUICO_STRIPE_WEBHOOK_SECRET"`
	Env            string        `envconfig:"EQUICO_STRIPE_ENV" default:"test"`
	MonthlyPriceID string        `envconfig:"EQUICO_STRIPE_MONTHLY_PRICE_ID"`
	AnnualPriceID  string        `envconfig:"EQUICO_STRIPE_ANNUAL_PRICE_ID"`
	EventTTL       time.Duration `envconfig:"EQUICO_STRIPE_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CronConfig struct {
	ReminderSchedule string        `envconfig:"EQUICO_CRON_REMINDER_SCHEDULE" default:"@every 15m"`
	ReminderWindow   time.Duration `envconfig:"EQUICO_CRON_REMINDER_WINDOW" default:"24h"`
	CleanupSchedule  string        `envconfig:"EQUICO_CRON_CLEANUP_SCHEDULE" default:"@daily"`
	RetentionDays    int           `envconfig:"EQUICO_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
	LockTTL          time.Duration `envconfig:"EQUICO_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
