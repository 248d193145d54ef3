package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "BANANAMEOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "BANANAMEOW_APP_ENV"
	EnvPort               = "BANANAMEOW_APP_PORT"
	EnvDBDSN              = "BANANAMEOW_DB_DSN"
	EnvDBHost             = "BANANAMEOW_DB_HOST"
	EnvDBUser             = "BANANAMEOW_DB_USER"
	EnvDBName             = "BANANAMEOW_DB_NAME"
	EnvRedisURL           = "BANANAMEOW_REDIS_URL"
	EnvStripeAPIKey       = "BANANAMEOW_STRIPE_API_KEY"
	EnvStripeSecret       = "BANANAMEOW_STRIPE_SECRET"
	EnvClientURL          = "BANANAMEOW_CLIENT_URL"
	EnvCheckoutCurrency   = "BANANAMEOW_CHECKOUT_CURRENCY"
	EnvCheckoutPendingTTL = "BANANAMEOW_CHECKOUT_PENDING_TTL"
	EnvCORSOrigins        = "BANANAMEOW_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
