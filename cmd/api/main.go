// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/brooklyncreativehub/hub-backend/internal/artists"
	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/database"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/ratelimit"
	"github.com/brooklyncreativehub/hub-backend/internal/config"
	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
	"github.com/brooklyncreativehub/hub-backend/internal/llm"
	"github.com/brooklyncreativehub/hub-backend/internal/matching"
	"github.com/brooklyncreativehub/hub-backend/internal/messaging"
	"github.com/brooklyncreativehub/hub-backend/internal/notification"
	"github.com/brooklyncreativehub/hub-backend/internal/payments"
	"github.com/brooklyncreativehub/hub-backend/internal/scheduler"
)

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting Brooklyn Creative Hub API", "environment", cfg.Environment)
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	// 3. Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration validation failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", "err", err)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// 5. Connect to Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("continuing without Redis; rate limits disabled", "err", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info("connected to Redis")
		}
	}

	// 6. Run database migrations
	if err := database.RunMigrations(ctx, db, logger); err != nil {
		logger.Fatal("failed to run migrations", "err", err)
	}

	// 7. Notifications
	var emailSender notification.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		emailSender = notification.NewSendGridEmailSender(cfg.SendGridAPIKey, cfg.EmailFrom)
	default:
		emailSender = notification.NewMockEmailSender(logger)
	}

	var smsSender notification.SMSSender
	switch cfg.SMSProvider {
	case "twilio":
		smsSender = notification.NewTwilioSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	default:
		smsSender = notification.NewMockSMSSender(logger)
	}

	var pushSender notification.PushSender
	switch cfg.PushProvider {
	case "fcm":
		fcm, err := notification.NewFCMPushSender(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("failed to initialize FCM", "err", err)
		}
		pushSender = fcm
	default:
		pushSender = notification.NewMockPushSender(logger)
	}

	deviceRepo := auth.NewDeviceRepository(db)
	notifier := notification.NewService(emailSender, smsSender, cfg.BaseURL).WithPush(pushSender, deviceRepo)
	logger.Info("notifications initialized", "email", cfg.EmailProvider, "sms", cfg.SMSProvider, "push", cfg.PushProvider)

	// 8. Auth
	var (
		verifier         auth.TokenVerifier
		claims           auth.RoleClaimSetter
		externalIdentity bool
	)
	switch cfg.AuthProvider {
	case "firebase":
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", "err", err)
		}
		verifier, claims, externalIdentity = fv, fv, true
	default:
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	}

	authRepo := auth.NewPostgresRepository(db)
	loginAttempts := ratelimit.NewCounter(redisClient, "login_attempts", cfg.LoginAttemptsMax, cfg.LoginAttemptsWindow)
	authService := auth.NewService(authRepo, loginAttempts, notifier, claims, &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
	}, logger)
	authHandler := auth.NewHandler(authService, logger)
	authMiddleware := auth.NewMiddleware(verifier, logger)
	logger.Info("authentication initialized", "provider", cfg.AuthProvider)

	// 9. Artists and portfolio uploads
	var storage artists.Storage
	if cfg.UseS3 {
		s3Storage, err := artists.NewS3Storage(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", "err", err)
		}
		storage = s3Storage
	} else {
		if err := os.MkdirAll(cfg.LocalUploadDir, 0o755); err != nil {
			logger.Fatal("failed to create upload directory", "dir", cfg.LocalUploadDir, "err", err)
		}
		storage = artists.NewLocalStorage(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
	}
	artistService := artists.NewService(artists.NewPostgresRepository(db), storage, logger)
	artistHandler := artists.NewHandler(artistService, cfg.MaxUploadSize, logger)

	// 10. Gigs
	gigService := gigs.NewService(gigs.NewPostgresRepository(db), logger)
	gigHandler := gigs.NewHandler(gigService, logger)

	// 11. AI gig matching
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL:   cfg.Matcher.BaseURL,
		APIKey:    cfg.Matcher.APIKey,
		Model:     cfg.Matcher.Model,
		MaxTokens: cfg.Matcher.MaxTokens,
		Timeout:   cfg.Matcher.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to create matcher client", "err", err)
	}
	matchService := matching.NewService(artistService, gigService, llmClient, matching.Config{
		Limits: matching.Limits{
			MaxGigs:           cfg.Matcher.MaxGigs,
			MaxPortfolioItems: cfg.Matcher.MaxPortfolioItems,
			MaxChars:          cfg.Matcher.MaxPromptChars,
		},
		MinScore: cfg.Matcher.MinScore,
	}, logger)
	matchLimiter := ratelimit.NewCounter(redisClient, "match_requests", cfg.Matcher.RateLimit, cfg.Matcher.RateWindow)
	matchHandler := matching.NewHandler(matchService, matchLimiter, logger)
	logger.Info("gig matching initialized", "model", llmClient.Model(), "timeout", cfg.Matcher.Timeout)

	// 12. Payments
	paymentService := payments.NewService(payments.NewPostgresRepository(db), payments.FeeSchedule{
		Percent: cfg.PaymentFeePercent,
		Flat:    cfg.PaymentFeeFlat,
	}, cfg.PendingPaymentTTL, logger)
	paymentHandler := payments.NewHandler(paymentService, logger)

	// 13. Messaging
	hub := messaging.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	messageService := messaging.NewService(messaging.NewPostgresRepository(db), authRepo, hub, notifier, logger)
	messageHandler := messaging.NewHandler(messageService, hub, logger)

	// 14. Routes
	router := newRouter(logger, &healthChecker{db: db, redis: redisClient})
	if !cfg.UseS3 {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}
	auth.RegisterRoutes(router, authHandler, authMiddleware, externalIdentity)
	auth.RegisterDeviceRoutes(router, auth.NewDeviceHandler(deviceRepo, logger), authMiddleware)
	artists.RegisterRoutes(router, artistHandler, authMiddleware)
	gigs.RegisterRoutes(router, gigHandler, authMiddleware)
	matching.RegisterRoutes(router, matchHandler, authMiddleware)
	payments.RegisterRoutes(router, paymentHandler, authMiddleware)
	messaging.RegisterRoutes(router, messageHandler, authMiddleware)

	// 15. Scheduled jobs
	jobs := scheduler.New(logger)
	if err := jobs.Add(cfg.PaymentSweepSchedule, "expire-stale-payments", func(ctx context.Context) error {
		_, err := paymentService.ExpireStale(ctx)
		return err
	}); err != nil {
		logger.Fatal("failed to schedule payment sweep", "err", err)
	}
	if err := jobs.Add(cfg.GigSweepSchedule, "close-expired-gigs", func(ctx context.Context) error {
		_, err := gigService.CloseExpired(ctx)
		return err
	}); err != nil {
		logger.Fatal("failed to schedule gig sweep", "err", err)
	}
	jobs.Start(ctx)

	// 16. Create and start HTTP server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Match requests wait on the upstream model
		WriteTimeout: cfg.Matcher.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server failed", "err", err)
	}

	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	stopHub()
	logger.Info("server exited gracefully")
}
