package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Coco120903/BananaMeow-sub000/api/controllers"
	webhookcontrollers "github.com/Coco120903/BananaMeow-sub000/api/controllers/webhooks"
	"github.com/Coco120903/BananaMeow-sub000/api/middleware"
	checkoutsvc "github.com/Coco120903/BananaMeow-sub000/internal/checkout"
	"github.com/Coco120903/BananaMeow-sub000/internal/ledger"
	stripewebhook "github.com/Coco120903/BananaMeow-sub000/internal/webhooks/stripe"
	pkgAuth "github.com/Coco120903/BananaMeow-sub000/pkg/auth"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/metrics"
	"github.com/Coco120903/BananaMeow-sub000/pkg/redis"
	"github.com/Coco120903/BananaMeow-sub000/pkg/stripe"
)

// Deps carries everything the router hands to controllers. Optional
// dependencies (Redis, the dedupe guard) may be nil.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Registry       *prometheus.Registry
	Ready          map[string]controllers.Pinger
	Idempotency    redis.IdempotencyStore
	Checkout       checkoutsvc.Service
	Ledger         ledger.Service
	Stripe         *stripe.Client
	Webhooks       *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
	WebhookMetrics *metrics.WebhookMetrics
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, "/health/live", "/health/ready", "/metrics"),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	stripeWebhook := webhookcontrollers.StripeWebhook(d.Webhooks, d.Stripe, d.WebhookGuard, d.WebhookMetrics, logg)
	r.Post("/api/v1/webhooks/stripe", stripeWebhook)
	r.Post("/webhook", stripeWebhook)

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.Idempotency(d.Idempotency, middleware.DefaultIdempotencyTTL, logg))
		r.Post("/donation", controllers.CheckoutDonation(d.Checkout, logg))
		r.Post("/order", controllers.CheckoutOrder(d.Checkout, logg))
		r.Get("/sessions/{sessionID}", controllers.CheckoutSession(d.Checkout, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, pkgAuth.RoleAdmin))
		r.Get("/ping", controllers.AdminPing())
		r.Get("/orders", controllers.AdminOrders(d.Ledger, logg))
		r.Get("/donations", controllers.AdminDonations(d.Ledger, logg))
	})

	return r
}
