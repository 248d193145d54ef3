package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	// ErrNotConfigured is returned by gateway calls when no API key was provided.
	ErrNotConfigured    = errors.New("stripe api key is not configured")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps the Stripe checkout session API plus env-specific metadata.
// A Client without an API key can still decode webhooks.
type Client struct {
	sessions      *session.Client
	environment   string
	signingSecret string
}

// NewClient initializes the Stripe client with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	client := &Client{
		environment:   env,
		signingSecret: strings.TrimSpace(cfg.Secret),
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey != "" {
		if err := validateAPIKey(env, apiKey); err != nil {
			return nil, err
		}
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
			LeveledLogger:     newGatewayLogger(ctx, logg),
		})
		client.sessions = &session.Client{B: backend, Key: apiKey}
	}

	if logg != nil {
		switch {
		case apiKey == "":
			logg.Warn(ctx, "stripe api key missing; checkout endpoints will fail with a configuration error")
		default:
			logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
		}
		if client.signingSecret == "" {
			logg.Warn(logg.WithField(ctx, "event", "webhook.unverified"),
				"stripe webhook secret missing; webhook payloads will be accepted WITHOUT signature verification")
		}
	}

	return client, nil
}

// Configured reports whether the client can call the Stripe API.
func (c *Client) Configured() bool {
	return c != nil && c.sessions != nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	prefix := "sk_" + env
	restricted := "rk_" + env
	if strings.HasPrefix(key, prefix) || strings.HasPrefix(key, restricted) {
		return nil
	}
	return fmt.Errorf("stripe environment %q requires a %s secret key (%s/%s)", env, env, prefix, restricted)
}
