package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/disputedesk/disputedesk-backend/api/routes"
	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/internal/evidence"
	"github.com/disputedesk/disputedesk-backend/internal/explanations"
	"github.com/disputedesk/disputedesk-backend/internal/packets"
	"github.com/disputedesk/disputedesk-backend/pkg/config"
	"github.com/disputedesk/disputedesk-backend/pkg/db"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
	"github.com/disputedesk/disputedesk-backend/pkg/metrics"
	"github.com/disputedesk/disputedesk-backend/pkg/migrate"
	pkgredis "github.com/disputedesk/disputedesk-backend/pkg/redis"
	"github.com/disputedesk/disputedesk-backend/pkg/storage/local"
	pkgstripe "github.com/disputedesk/disputedesk-backend/pkg/stripe"
)

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

	storageClient, err := local.NewClient(cfg.Storage)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare storage directories", err)
		os.Exit(1)
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay disabled")
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe client", err)
		os.Exit(1)
	}

	disputesService, err := disputes.NewService(disputes.NewStripeGateway(stripeClient))
	if err != nil {
		logg.Error(context.Background(), "failed to create disputes service", err)
		os.Exit(1)
	}

	evidenceService, err := evidence.NewService(
		evidence.NewRepository(dbClient.DB()),
		storageClient,
		cfg.Evidence.MaxUploadBytes(),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create evidence service", err)
		os.Exit(1)
	}

	explanationsService, err := explanations.NewService(explanations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create explanations service", err)
		os.Exit(1)
	}

	packetsService, err := packets.NewService(
		disputes.NewStripeGateway(stripeClient),
		evidence.NewRepository(dbClient.DB()),
		explanations.NewRepository(dbClient.DB()),
		packets.NewRepository(dbClient.DB()),
		storageClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create packets service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			storageClient,
			redisClient,
			httpMetrics,
			disputesService,
			evidenceService,
			explanationsService,
			packetsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
