package main

import (
	"context"
	"os"
	"time"

	"github.com/lunani254/present/internal/bidding/application"
	"github.com/lunani254/present/internal/bidding/infra/httpapi"
	"github.com/lunani254/present/internal/bidding/infra/repository/postgres"
	biddingws "github.com/lunani254/present/internal/bidding/infra/websocket"
	"github.com/lunani254/present/internal/shared/db"
	"github.com/lunani254/present/internal/shared/db/migrations"
	"github.com/lunani254/present/internal/shared/httpserver"
	"github.com/lunani254/present/internal/shared/logger"
	"github.com/lunani254/present/internal/shared/websocket"
	"go.uber.org/zap"
)

func main() {
	logger := logger.GetLogger()
	defer logger.Sync()

	logger.Info("Starting bidding engine server...")

	logger.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		logger.Fatal("Database migration failed", zap.Error(err))
	}
	logger.Info("Database migrations completed successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// notification channel
	hub := websocket.NewHub()
	go hub.Run(ctx)
	publisher := biddingws.NewHubEventPublisher(hub)

	// bidding module wiring
	bidRepo := postgres.NewBidRepository(pool)
	listings := postgres.NewListingDirectory(pool)
	counterUC := application.NewSyncBidderCountUseCase(bidRepo, listings)
	submitUC := application.NewSubmitBidUseCase(bidRepo, listings, counterUC, publisher)
	listUC := application.NewListBidsUseCase(bidRepo, listings)
	decideUC := application.NewDecideBidUseCase(bidRepo, listings, publisher)
	service := application.NewBiddingService(submitUC, listUC, decideUC, counterUC)

	// counter reconciliation sweep, heals drift left by failed syncs
	reconciler := application.NewReconciler(counterUC, reconcileInterval())
	go reconciler.Run(ctx)

	server := httpserver.NewServer()
	httpapi.NewHandler(service).RegisterRoutes(server.App())
	biddingws.RegisterRoutes(ctx, server.App(), hub)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

func reconcileInterval() time.Duration {
	if raw := os.Getenv("RECONCILE_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 5 * time.Minute
}
