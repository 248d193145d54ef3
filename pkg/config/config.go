package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Stripe        StripeConfig
	Checkout      CheckoutConfig
	Notifications NotificationsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	JWT           JWTConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.App.IsProd() && strings.TrimSpace(c.Stripe.Secret) == "" {
		return fmt.Errorf("%s is required when %s=%s", EnvStripeSecret, EnvAppEnv, AppEnvProd)
	}
	if c.Checkout.PendingTTL < 0 {
		return fmt.Errorf("%s must be non-negative", EnvCheckoutPendingTTL)
	}
	currency, err := enums.ParseCurrency(c.Checkout.Currency)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvCheckoutCurrency, err)
	}
	c.Checkout.Currency = currency.String()
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"BANANAMEOW_APP_ENV" required:"true"`
	Port         string `envconfig:"BANANAMEOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BANANAMEOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BANANAMEOW_LOG_WARN_STACK" default:"false"`
	// comma separated list of origins allowed to call the API from a browser
	CORSOrigins []string `envconfig:"BANANAMEOW_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BANANAMEOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN       string        `envconfig:"BANANAMEOW_DB_DSN"`
	SlowQuery time.Duration `envconfig:"BANANAMEOW_DB_SLOW_QUERY" default:"500ms"`

	LegacyHost     string `envconfig:"BANANAMEOW_DB_HOST"`
	LegacyPort     int    `envconfig:"BANANAMEOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BANANAMEOW_DB_USER"`
	LegacyPassword string `envconfig:"BANANAMEOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"BANANAMEOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"BANANAMEOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BANANAMEOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BANANAMEOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BANANAMEOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BANANAMEOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BANANAMEOW_REDIS_URL"`
	Address      string        `envconfig:"BANANAMEOW_REDIS_ADDR"`
	Password     string        `envconfig:"BANANAMEOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"BANANAMEOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BANANAMEOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BANANAMEOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BANANAMEOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BANANAMEOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BANANAMEOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type StripeConfig struct {
	APIKey string `envconfig:"BANANAMEOW_STRIPE_API_KEY"`
	// webhook signing secret (whsec_...); empty means webhooks are accepted unverified
	Secret string `envconfig:"BANANAMEOW_STRIPE_SECRET"`
	Env    string `envconfig:"BANANAMEOW_STRIPE_ENV" default:"test"`
	// dedupe window for delivered event ids
	EventTTL time.Duration `envconfig:"BANANAMEOW_STRIPE_EVENT_TTL" default:"72h"`
	// retries for idempotent gateway calls (network errors, 409, 5xx)
	MaxNetworkRetries int64 `envconfig:"BANANAMEOW_STRIPE_MAX_NETWORK_RETRIES" default:"2"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	// base URL of the storefront; success/cancel paths are appended to it
	ClientURL   string        `envconfig:"BANANAMEOW_CLIENT_URL" default:"http://localhost:3000"`
	SuccessPath string        `envconfig:"BANANAMEOW_CHECKOUT_SUCCESS_PATH" default:"/checkout/success"`
	CancelPath  string        `envconfig:"BANANAMEOW_CHECKOUT_CANCEL_PATH" default:"/checkout/cancel"`
	Currency    string        `envconfig:"BANANAMEOW_CHECKOUT_CURRENCY" default:"usd"`
	PendingTTL  time.Duration `envconfig:"BANANAMEOW_CHECKOUT_PENDING_TTL" default:"48h"`
}

// SuccessURL is the redirect target after a paid session. The literal
// {CHECKOUT_SESSION_ID} placeholder is expanded by the gateway.
func (c CheckoutConfig) SuccessURL() string {
	return joinURL(c.ClientURL, c.SuccessPath) + "?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is the redirect target when the payer abandons the session.
func (c CheckoutConfig) CancelURL() string {
	return joinURL(c.ClientURL, c.CancelPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

type NotificationsConfig struct {
	Enabled     bool          `envconfig:"BANANAMEOW_NOTIFICATIONS_ENABLED" default:"true"`
	SendTimeout time.Duration `envconfig:"BANANAMEOW_NOTIFICATIONS_SEND_TIMEOUT" default:"10s"`
	FromEmail   string        `envconfig:"BANANAMEOW_NOTIFICATIONS_FROM_EMAIL" default:"hello@bananameow.com"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BANANAMEOW_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string        `envconfig:"BANANAMEOW_PUBSUB_NOTIFICATION_TOPIC" default:"bm-email-requests"`
	VerifyTopic       bool          `envconfig:"BANANAMEOW_PUBSUB_VERIFY_TOPIC" default:"true"`
	BatchDelay        time.Duration `envconfig:"BANANAMEOW_PUBSUB_BATCH_DELAY" default:"10ms"`
	PublishTimeout    time.Duration `envconfig:"BANANAMEOW_PUBSUB_PUBLISH_TIMEOUT" default:"30s"`
}

type JWTConfig struct {
	Secret string `envconfig:"BANANAMEOW_JWT_SECRET"`
	Issuer string `envconfig:"BANANAMEOW_JWT_ISSUER" default:"bananameow"`
}

// Enabled reports whether admin bearer tokens can be verified.
func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BANANAMEOW_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"BANANAMEOW_CRON_LOCK_TTL" default:"55m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BANANAMEOW_AUTO_MIGRATE" default:"false"`
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
