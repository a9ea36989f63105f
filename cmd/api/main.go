package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"payment-form-builder/internal/client"
	"payment-form-builder/internal/config"
	"payment-form-builder/internal/repository"
	"payment-form-builder/internal/server"
	"payment-form-builder/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(&cfg.Log)

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe, log)
	mailer := client.NewSendgridMailer(&cfg.Mail)

	formRepo := repository.NewFormRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	nonces := service.NewNonceService(cfg.Security.NonceSecret)
	notifier := service.NewNotificationDispatcher(mailer, &cfg.Mail, log)
	reconciler := service.NewReconciler(submissionRepo, formRepo, notifier, log)

	paymentService := service.NewPaymentService(
		stripeClient,
		formRepo,
		submissionRepo,
		webhookEventRepo,
		reconciler,
		nonces,
		log,
	)
	formService := service.NewFormService(formRepo, submissionRepo, stripeClient, nonces)

	srv := server.NewServer(paymentService, formService, cfg.Security.AdminAPIKey)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("HTTP server shutdown error")
	}
}

func newLogger(cfg *config.Log) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
