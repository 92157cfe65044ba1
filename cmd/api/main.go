// cmd/api is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hangaroo/backend/internal/auth"
	"github.com/hangaroo/backend/internal/config"
	"github.com/hangaroo/backend/internal/database"
	"github.com/hangaroo/backend/internal/handler"
	"github.com/hangaroo/backend/internal/logger"
	"github.com/hangaroo/backend/internal/payment"
	"github.com/hangaroo/backend/internal/repository"
	"github.com/hangaroo/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Error("schema migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// Wire up layers. Every client is constructed here and shared by
	// reference; nothing reaches for ambient globals.
	accountRepo := repository.NewAccountRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	google := auth.NewGoogleVerifier(cfg.GoogleClientID)
	gateway := payment.NewClient(cfg.ESewaBaseURL, cfg.ESewaProductCode)
	uploads := handler.NewUploads(cfg.UploadDir, cfg.PublicBaseURL)

	notificationSvc := service.NewNotificationService(notificationRepo)
	eventSvc := service.NewEventService(eventRepo, accountRepo, notificationSvc, log)
	paymentSvc := service.NewPaymentService(gateway, transactionRepo, eventRepo, notificationSvc, log)
	accountSvc := service.NewAccountService(accountRepo, tokens, google, log)

	eventHandler := handler.NewEventHandler(eventSvc, uploads)
	userHandler := handler.NewUserHandler(accountSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.RequestLogger(log))

	r.Get("/health", handler.HealthCheck)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/user/signup", userHandler.SignUp)
		r.Post("/user/signin", userHandler.SignIn)
		r.Post("/auth/google", userHandler.GoogleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(handler.Auth(tokens))

			r.Get("/user/profile", userHandler.Profile)
			r.Put("/user/push-token", userHandler.SetPushToken)

			r.Route("/events", func(r chi.Router) {
				r.Post("/", eventHandler.Create)
				r.Get("/", eventHandler.List)
				r.Get("/joined", eventHandler.ListJoined)
				r.Get("/hosted", eventHandler.ListHosted)
				r.Get("/ongoing", eventHandler.ListOngoing)
				r.Get("/{eventID}", eventHandler.Get)
				r.Post("/{eventID}/join", eventHandler.Join)
				r.Post("/{eventID}/complete", eventHandler.Complete)
			})

			r.Post("/payment/verify-manual", paymentHandler.VerifyManual)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/send", notificationHandler.Send)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}
