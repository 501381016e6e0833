package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tooma/internal/app"
	"tooma/internal/config"
	"tooma/internal/database"
	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	jwtsvc "tooma/internal/pkg/jwt"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"
	"tooma/internal/pkg/storage"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cobra.EnableCommandSorting = false
	root := &cobra.Command{
		Use:           "tooma-api",
		Short:         "File sharing and paid download API.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("migrations applied", "postgres", database.IsPostgres(cfg.DatabaseURL))
			return nil
		},
	}
}

func bootstrap() (*config.Config, *log.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, logger, db, nil
}

func migrate(ctx context.Context, db *gorm.DB) error {
	return database.Migrate(ctx, db, &domain.FileUpload{}, &domain.BuyerInfo{})
}

func serve(ctx context.Context) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	if err := migrate(ctx, db); err != nil {
		return err
	}

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
		UsePathStyle:    cfg.S3.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}

	gateway := payment.NewClient(payment.Config{
		SecretKey: cfg.Paystack.SecretKey,
		BaseURL:   cfg.Paystack.BaseURL,
		Currency:  cfg.Paystack.Currency,
		Timeout:   cfg.Paystack.Timeout,
	}, logger)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}

	a := app.New(app.Deps{
		Config:  cfg,
		DB:      db,
		Store:   store,
		Gateway: gateway,
		Sender:  sender,
		JWT:     jwtsvc.New(cfg.JWTSecret),
		Log:     logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	a.Notifier.Wait()
	return err
}

func newSender(cfg *config.Config, logger logging.Logger) (notify.Sender, error) {
	if !cfg.SMTP.Enabled() {
		logger.Warn("SMTP not configured, emails will only be logged")
		return notify.NewLogSender(logger), nil
	}
	sender, err := notify.NewSMTPSender(notify.SMTPOptions{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init smtp sender: %w", err)
	}
	return sender, nil
}
