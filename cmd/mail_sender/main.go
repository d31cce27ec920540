package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"user_service/internal/config"
	sl "user_service/internal/lib/logger"
	"user_service/internal/mailer"
	"user_service/internal/rabbitmq"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	configPath := flag.String("config", "./config/mail_sender.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadMailSender(*configPath)
	log := setupLogger(cfg.Env)

	log.Info("Starting mail_sender", slog.String("env", cfg.Env))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("mail_sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("service gracefully stopped")
}

func run(ctx context.Context, cfg *config.MailSenderConfig, log *slog.Logger) error {
	r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		return err
	}
	defer r.Close()

	m := mailer.New(cfg.SMTP)

	log.Info("consumer successfully started", slog.String("queue", cfg.RabbitMQ.QueueName))

	err = r.StartReading(ctx, cfg.Prefetch, handleMessage(log, m))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("shutting down consumer...")

	return nil
}

func handleMessage(log *slog.Logger, m *mailer.Mailer) rabbitmq.Handler {
	return func(ctx context.Context, body []byte) error {
		if err := m.Deliver(ctx, body); err != nil {
			if errors.Is(err, mailer.ErrMalformedMessage) {
				log.Warn("dropping malformed message", sl.Err(err))
			} else {
				log.Error("failed to send message", sl.Err(err))
			}

			return err
		}

		log.Info("message sent successfully")

		return nil
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
