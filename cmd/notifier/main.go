package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"expensetracker/config"
	"expensetracker/internal/notification"

	"github.com/sirupsen/logrus"
)

// notifier consumes the notifications topic and sends the emails.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if err := cfg.ValidateNotifier(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	mailer, err := notification.NewMailer(notification.Settings{
		Mailer:         cfg.Mailer,
		ResendAPIKey:   cfg.ResendAPIKey,
		MailFrom:       cfg.MailFrom,
		SMTPHost:       cfg.SMTPHost,
		SMTPUser:       cfg.SMTPUser,
		SMTPPassword:   cfg.SMTPPassword,
		SMTPSkipVerify: cfg.SMTPSkipVerify,
	})
	if err != nil {
		logger.WithError(err).Fatal("mailer")
	}

	consumer := notification.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		notification.NewMailSink(mailer, cfg.AppBaseURL),
		logger,
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"topic": cfg.KafkaTopic,
		"group": cfg.KafkaGroupID,
	}).Info("notifier started")
	if err := consumer.Run(ctx); err != nil {
		logger.WithError(err).Fatal("notifier stopped")
	}
	logger.Info("notifier stopped")
}
