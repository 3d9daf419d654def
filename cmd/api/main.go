package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/skumawat/bidkart-backend/api/routes"
	"github.com/skumawat/bidkart-backend/internal/chat"
	"github.com/skumawat/bidkart-backend/internal/listings"
	"github.com/skumawat/bidkart-backend/internal/notifications"
	"github.com/skumawat/bidkart-backend/internal/offers"
	"github.com/skumawat/bidkart-backend/internal/orders"
	"github.com/skumawat/bidkart-backend/internal/realtime"
	"github.com/skumawat/bidkart-backend/pkg/config"
	"github.com/skumawat/bidkart-backend/pkg/db"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/metrics"
	"github.com/skumawat/bidkart-backend/pkg/migrate"
	"github.com/skumawat/bidkart-backend/pkg/outbox"
	"github.com/skumawat/bidkart-backend/pkg/paygate"
	"github.com/skumawat/bidkart-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gateway, err := paygate.NewClient(cfg.PayGate, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	hub, err := realtime.NewHub(cfg.Realtime.SendBuffer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime hub", err)
		os.Exit(1)
	}
	bridge, err := realtime.NewBridge(hub, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime bridge", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), bridge, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	listingsSvc, err := listings.NewService(listings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	offersSvc, err := offers.NewService(offers.NewRepository(dbClient.DB()), dbClient, notificationsSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()
	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		gateway,
		outboxSvc,
		notificationsSvc,
		redisClient,
		metrics.NewPaymentMetrics(httpMetrics.Registry()),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	chatSvc, err := chat.NewService(chat.NewRepository(dbClient.DB()), dbClient, outboxSvc, bridge, notificationsSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			logg.Error(ctx, "realtime bridge stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			CachePinger:   redisClient,
			Presence:      redisClient,
			HTTPMetrics:   httpMetrics,
			Hub:           hub,
			Listings:      listingsSvc,
			Offers:        offersSvc,
			Orders:        ordersSvc,
			Notifications: notificationsSvc,
			Chats:         chatSvc,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := shutdown(shutdownCtx, server, dbClient, redisClient); err != nil {
		logg.Error(ctx, "shutdown completed with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func shutdown(ctx context.Context, server *http.Server, dbClient *db.Client, redisClient *redis.Client) error {
	var errs error
	if err := server.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := dbClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := redisClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
