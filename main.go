package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"activity-booking/cmd"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/wire"
	"activity-booking/pkg/cache"
	"activity-booking/pkg/database"
	"activity-booking/pkg/payment"
	"activity-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	redisCache := cache.New(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	defer redisCache.Close()

	client, err := payment.New(config.Payment.APIBaseURL, config.Payment.SecretKey, config.Payment.RequestsPerSecond)
	if err != nil {
		logger.Fatal("Failed to init payment client", zap.Error(err))
	}

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, client, redisCache, db, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
		return cmd.APIServer(ctx, app.Router, config.App.Port)
	})

	// Reconciliation sweep: re-applies completed payments stuck against
	// pending reservations and prunes expired sessions.
	group.Go(func() error {
		ticker := time.NewTicker(config.Sweep.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := app.Service.Payment.ReconcileSweep(ctx); err != nil {
					logger.Error("Reconcile sweep failed", zap.Error(err))
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}

	logger.Info("Application stopped")
}
