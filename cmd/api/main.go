package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightkatongo/learn-hub/api/routes"
	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/handlers"
	mongorepo "github.com/brightkatongo/learn-hub/internal/repositories/mongodb"
	"github.com/brightkatongo/learn-hub/internal/services"
	"github.com/brightkatongo/learn-hub/internal/utils"
	"github.com/brightkatongo/learn-hub/pkg/mongodb"
	"github.com/brightkatongo/learn-hub/pkg/smsgateway"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongorepo.EnsureIndexes(indexCtx, db); err != nil {
		cancelIndex()
		slog.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}
	cancelIndex()

	// Repositories
	txRepo := mongorepo.NewTransactionRepository(db)
	providerRepo := mongorepo.NewProviderRepository(db)
	verificationRepo := mongorepo.NewVerificationRepository(db)
	notificationRepo := mongorepo.NewNotificationRepository(db)
	enrollmentRepo := mongorepo.NewEnrollmentRepository(db)
	courseRepo := mongorepo.NewCourseRepository(db)
	userRepo := mongorepo.NewUserRepository(db)

	// SMS gateway
	var gateway smsgateway.Gateway
	if cfg.SMS.MockSMSGateway {
		gateway = smsgateway.NewMockGateway("mock")
		slog.Warn("using mock SMS gateway; no real SMS will be sent")
	} else {
		gateway = smsgateway.NewAfricasTalkingGateway(cfg)
	}

	// Services
	notificationService := services.NewSMSNotificationService(notificationRepo, gateway, cfg.Payment)
	refgen := utils.NewReferenceGenerator(nil)
	paymentService := services.NewPaymentService(
		txRepo, providerRepo, verificationRepo, enrollmentRepo, courseRepo,
		notificationService, refgen, cfg.Payment,
	)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo)
	authService := services.NewAuthService(userRepo, cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, enrollmentService, courseRepo)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:    authHandler,
		PaymentHandler: paymentHandler,
	})

	sweeper := services.NewSweeper(paymentService, cfg.Payment.SweepInterval)
	sweeper.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
