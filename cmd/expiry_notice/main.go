package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tooma/internal/config"
	"tooma/internal/database"
	"tooma/internal/domain/files"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"
	"tooma/internal/repository"

	"github.com/spf13/cobra"
)

func main() {
	var limit int
	cmd := &cobra.Command{
		Use:          "expiry_notice",
		Short:        "Email owners whose uploads expire within EXPIRY_NOTICE_WINDOW",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 500, "max uploads to notify per run")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run is meant to be triggered from cron.
func run(ctx context.Context, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.SMTP.Enabled() {
		smtp, err := notify.NewSMTPSender(notify.SMTPOptions{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		})
		if err != nil {
			return err
		}
		sender = smtp
	}

	sweeper := files.NewExpirySweeper(repository.NewFileUploadRepository(db), notify.NewNotifier(sender, logger), logger)
	sent, failed, err := sweeper.Run(ctx, cfg.ExpiryNoticeWindow, limit)
	if err != nil {
		logger.Error("expiry notices aborted", "sent", sent, "failed", failed, "err", err)
		return err
	}
	logger.Info("expiry notices completed", "sent", sent, "failed", failed)
	return nil
}
