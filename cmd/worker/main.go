package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donorcrm/internal/adapter/repo"
	"donorcrm/internal/campaign"
	"donorcrm/internal/infra"
	"donorcrm/internal/infra/credentials"
	"donorcrm/internal/infra/events"
	"donorcrm/internal/providers/mail"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	var mailer mail.Sender = mail.LogSender{Logger: logger}
	if cfg.SMTPHost != "" {
		password, err := credentials.NewStore(runner).Resolve(ctx, credentials.ProviderSMTP, cfg.SMTPPassword)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load smtp password from store")
		}
		mailer = mail.NewSMTPClient(mail.Options{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: password,
			From:     cfg.SMTPFrom,
			Logger:   &logger,
		})
	} else {
		logger.Warn().Msg("worker: SMTP_HOST not set, campaign mail is logged only")
	}

	worker := campaign.NewWorker(
		repo.NewEmailJobRepository(runner),
		runner,
		mailer,
		events.NewPublisher(runner),
		logger,
		campaign.WorkerOptions{
			PollInterval: cfg.WorkerPollInterval,
			MaxAttempts:  cfg.WorkerMaxAttempts,
			RetryBackoff: cfg.WorkerRetryBackoff,
			StaleAfter:   cfg.WorkerStaleAfter,
		},
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
