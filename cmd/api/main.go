package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/email-otp-api/internal/application/otp"
	"github.com/email-otp-api/internal/config"
	"github.com/email-otp-api/internal/domain"
	"github.com/email-otp-api/internal/infrastructure/dynamo"
	"github.com/email-otp-api/internal/infrastructure/logmail"
	"github.com/email-otp-api/internal/infrastructure/memory"
	redisinfra "github.com/email-otp-api/internal/infrastructure/redis"
	"github.com/email-otp-api/internal/infrastructure/sendgrid"
	"github.com/email-otp-api/internal/infrastructure/smtp"
	"github.com/email-otp-api/internal/infrastructure/sns"
	"github.com/email-otp-api/internal/pkg/clock"
	transporthttp "github.com/email-otp-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	clk := clock.New()

	store, closeStore, err := newStore(ctx, cfg, clk)
	if err != nil {
		log.Fatalf("otp store: %v", err)
	}

	deps := otp.ServiceDeps{
		Store:     store,
		Sender:    newSender(cfg),
		Clock:     clk,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}

	// Alert notifier is optional; without it delivery failures are only logged.
	if cfg.SNSAlertTopicARN != "" {
		if n, err := sns.NewNotifier(ctx, cfg); err == nil {
			deps.Alerts = n
		} else {
			log.Printf("WARN: SNS notifier not available: %v", err)
		}
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		OTPService: otp.NewService(deps),
		Now:        clk.Now,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s, mail=%s)", cfg.AppPort, cfg.AppEnv, cfg.OTPStore, cfg.MailDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	if err := closeStore(); err != nil {
		log.Printf("WARN: closing otp store: %v", err)
	}
	log.Println("Server stopped")
}

// newStore builds the configured OTP store and the function that releases it.
func newStore(ctx context.Context, cfg *config.Config, clk clock.Clocker) (otp.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.OTPStore {
	case config.StoreRedis:
		client, err := redisinfra.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisinfra.NewStore(client, domain.CodeTTL), client.Close, nil
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoOTPTable)
		return dynamo.NewOTPRepo(client, cfg.DynamoOTPTable, domain.CodeTTL), noop, nil
	default:
		s := memory.NewStore(cfg.OTPMaxEntries)
		if cfg.OTPSweepEvery > 0 {
			go s.RunSweeper(ctx, cfg.OTPSweepEvery, clk.Now)
		}
		return s, noop, nil
	}
}

func newSender(cfg *config.Config) otp.Sender {
	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return smtp.NewMailer(cfg)
	case config.MailDriverLog:
		return logmail.NewMailer(slog.Default())
	default:
		return sendgrid.NewMailer(cfg.SendGridAPIKey, sendgrid.DefaultHost)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
