// Command mail_worker drains the email queue filled by the API server
// (MAIL_DRIVER=rabbitmq) and delivers each message through Mailgun.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/inkpress/internal/adapters/mail"
	"github.com/SscSPs/inkpress/internal/platform/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Error("RabbitMQ not configured: set RABBITMQ_URL and RABBITMQ_EMAIL_QUEUE")
		os.Exit(1)
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Error("Mailgun not configured: set MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER")
		os.Exit(1)
	}

	sender := mail.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	consumer, err := mail.NewQueueConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, sender, logger)
	if err != nil {
		logger.Error("Failed to start queue consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil {
		logger.Error("Mail worker stopped", slog.String("error", err.Error()))
		consumer.Close()
		os.Exit(1)
	}
	logger.Info("Mail worker shut down")
}
