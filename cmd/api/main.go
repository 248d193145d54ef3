package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Coco120903/BananaMeow-sub000/api/controllers"
	"github.com/Coco120903/BananaMeow-sub000/api/routes"
	"github.com/Coco120903/BananaMeow-sub000/internal/checkout"
	"github.com/Coco120903/BananaMeow-sub000/internal/donations"
	"github.com/Coco120903/BananaMeow-sub000/internal/ledger"
	"github.com/Coco120903/BananaMeow-sub000/internal/notifications"
	"github.com/Coco120903/BananaMeow-sub000/internal/orders"
	"github.com/Coco120903/BananaMeow-sub000/internal/products"
	stripewebhook "github.com/Coco120903/BananaMeow-sub000/internal/webhooks/stripe"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db"
	"github.com/Coco120903/BananaMeow-sub000/pkg/env"
	"github.com/Coco120903/BananaMeow-sub000/pkg/instance"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/metrics"
	"github.com/Coco120903/BananaMeow-sub000/pkg/migrate"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pubsub"
	"github.com/Coco120903/BananaMeow-sub000/pkg/redis"
	"github.com/Coco120903/BananaMeow-sub000/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	ready := map[string]controllers.Pinger{"database": dbClient}

	// Redis backs the checkout Idempotency-Key cache and the event-id guard.
	// Without it both are skipped and the ledger's conditional updates alone
	// keep redeliveries harmless.
	var (
		idempotencyStore redis.IdempotencyStore
		webhookGuard     *stripewebhook.IdempotencyGuard
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotencyStore = redisClient
		webhookGuard, err = stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.EventTTL, stripewebhook.EventScope)
		if err != nil {
			logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
			os.Exit(1)
		}
		ready["redis"] = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured; idempotency caching disabled")
		ready["redis"] = nil
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	registry := metrics.NewRegistry()

	var sender notifications.Sender = notifications.NewLogSender(logg)
	if cfg.GCP.ProjectID != "" {
		psClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		publisher := psClient.NotificationPublisher()
		defer publisher.Stop()
		sender, err = notifications.NewPubSubSender(publisher)
		if err != nil {
			logg.Error(context.Background(), "failed to create pubsub sender", err)
			os.Exit(1)
		}
		ready["pubsub"] = psClient
	}
	dispatcher, err := notifications.NewDispatcher(sender, notifications.DispatcherOptions{
		Enabled:   cfg.Notifications.Enabled,
		Timeout:   cfg.Notifications.SendTimeout,
		FromEmail: cfg.Notifications.FromEmail,
		Logger:    logg,
		Metrics:   metrics.NewNotificationMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	donationsRepo := donations.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	checkoutService, err := checkout.NewService(checkout.Deps{
		Tx:        dbClient,
		Gateway:   stripeClient,
		Orders:    ordersRepo,
		Donations: donationsRepo,
		Products:  productsRepo,
		Config:    cfg.Checkout,
		Logger:    logg,
		Metrics:   metrics.NewCheckoutMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		TransactionRunner: dbClient,
		Orders:            ordersRepo,
		Donations:         donationsRepo,
		Products:          productsRepo,
		Sessions:          stripeClient,
		Notifier:          dispatcher,
		Logger:            logg,
		Metrics:           webhookMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ordersRepo, donationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"stripe":   stripeClient.Environment(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			Registry:       registry,
			Ready:          ready,
			Idempotency:    idempotencyStore,
			Checkout:       checkoutService,
			Ledger:         ledgerService,
			Stripe:         stripeClient,
			Webhooks:       webhookService,
			WebhookGuard:   webhookGuard,
			WebhookMetrics: webhookMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	// receipts already scheduled for committed events still go out
	dispatcher.Wait()
	logg.Info(ctx, "api server stopped")
}
