package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/application/auth"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/config"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/infrastructure/postgres"
	resendinfra "github.com/pr-poehali-dev/tracks-distribution-platform/internal/infrastructure/resend"
	smtpinfra "github.com/pr-poehali-dev/tracks-distribution-platform/internal/infrastructure/smtp"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/code"
	transporthttp "github.com/pr-poehali-dev/tracks-distribution-platform/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setupLogger(cfg)

	store, err := postgres.NewStore(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var notifier auth.Notifier
	switch cfg.Mailer {
	case config.MailerSMTP:
		notifier = smtpinfra.NewMailer(smtpinfra.Options{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	default:
		notifier, err = resendinfra.NewNotifier(cfg.ResendAPIKey)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		UserRepo: postgres.NewUserRepo(store),
		CodeRepo: postgres.NewCodeRepo(store),
		Notifier: notifier,
		CodeGen:  code.NewGenerator(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "mailer", cfg.Mailer)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
