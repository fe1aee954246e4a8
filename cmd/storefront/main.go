package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/cache"
	"github.com/fjod/go_prasad/internal/catalog"
	"github.com/fjod/go_prasad/internal/checkout"
	"github.com/fjod/go_prasad/internal/config"
	h "github.com/fjod/go_prasad/internal/http"
	"github.com/fjod/go_prasad/internal/payment"
	"github.com/fjod/go_prasad/internal/publisher"
	"github.com/fjod/go_prasad/internal/repository"
	"github.com/fjod/go_prasad/internal/shopper"
	"github.com/fjod/go_prasad/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Local store: session tokens, pending checkouts, event outbox
	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("database migrations completed", "path", cfg.DBPath)

	client := backend.NewClient(backend.Options{
		BaseURL:             cfg.BackendURL,
		Timeout:             cfg.BackendTimeout,
		BreakerFailures:     cfg.BreakerFailures,
		BreakerOpenDuration: cfg.BreakerOpenDuration,
		Logger:              log,
	})

	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			productCache = cache.NewRedisCache(redisClient)
			log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		}
	}
	products := catalog.NewService(client, productCache, log, cfg.MaxConcurrent)

	widget := payment.NewHostedCheckout(cfg.PaymentScriptURL, &http.Client{
		Timeout:   cfg.BackendTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, log)

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), log)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox poller started", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		log.Warn("no kafka brokers configured, checkout events stay in the outbox")
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	shoppers := shopper.NewRegistry(shopper.Options{
		Backend: client,
		Widget:  widget,
		Gate:    payment.NewGate(client),
		Events:  repo,
		Pending: repo,
		Config: checkout.Config{
			PaymentKey: cfg.PaymentKey,
			Currency:   cfg.Currency,
			StoreName:  cfg.StoreName,
			Theme:      cfg.PaymentTheme,
			SuccessURL: publicURL + "/payment/callback/success",
			FailureURL: publicURL + "/payment/callback/failure",
		},
		Logger: log,
	})
	go shoppers.RunSweeper(ctx, time.Minute, cfg.ShopperIdleTimeout)

	router := h.NewRouter(h.RouterConfig{
		Shoppers:           shoppers,
		Catalog:            products,
		Resolver:           products,
		Orders:             client,
		PaymentCallbacks:   widget.CallbackRoutes(),
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
