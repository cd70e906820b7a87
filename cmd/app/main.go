package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio-track-subscription/internal/config"
	pg "audio-track-subscription/internal/infra/db/postgres"
	"audio-track-subscription/internal/infra/logging"
	"audio-track-subscription/internal/infra/metrics"
	"audio-track-subscription/internal/infra/payment/razorpay"
	red "audio-track-subscription/internal/infra/redis"
	"audio-track-subscription/internal/infra/sched"
	"audio-track-subscription/internal/infra/web"
	"audio-track-subscription/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed validation)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	categoryRepo := pg.NewCategoryRepo(pool)
	trackRepo := pg.NewTrackRepoCacheDecorator(pg.NewTrackRepo(pool), redisClient, cfg.Redis.TTL)
	txRepo := pg.NewTransactionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)

	// ---- Payment gateway ----
	gateway := razorpay.NewGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	catalogUC := usecase.NewCatalogUseCase(categoryRepo, trackRepo, subRepo, logger)
	orderUC := usecase.NewOrderUseCase(userRepo, txRepo, gateway, cfg.Currency, logger)
	settlementUC := usecase.NewSettlementUseCase(
		txRepo, subRepo, txManager,
		cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret,
		cfg.Currency, cfg.Subscription.GrantDays, logger,
	)
	statusUC := usecase.NewStatusUseCase(subRepo, trackRepo, cfg.Subscription.LegacyTrackTitle, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, subRepo, txRepo, logger)
	adminUC := usecase.NewAdminUseCase(subRepo, txRepo, logger)

	// ---- Background workers ----
	expiry := sched.NewExpiryWorker(cfg.Worker.ExpiryInterval, subRepo, logger)
	go func() { _ = expiry.Run(ctx) }()
	reconciler := sched.NewTransactionReconciler(txRepo, cfg.Worker.ReconcileInterval, cfg.Worker.StaleAfter, logger)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	srv := web.NewServer(
		userUC, catalogUC, orderUC, settlementUC, statusUC, statsUC, adminUC,
		auth, rateLimiter, cfg.Auth.AdminAPIKey, logger,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
