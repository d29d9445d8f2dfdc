package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/app"
	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nexcrew daemon",
	Long: `Start the heartbeat scheduler, the Telegram bot and the HTTP endpoint
serving /metrics and the /events stream. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: serveHandler,
}

func serveHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), constants.MsgConfigLoadError, err)
		return err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), constants.MsgConfigInvalid)
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
		}
		return fmt.Errorf("%d validation errors", len(errs))
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting nexcrew",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "workspace", Value: cfg.Workspace.Path},
		logger.Field{Key: "heartbeat", Value: cfg.Heartbeat.Enabled},
		logger.Field{Key: "telegram", Value: cfg.Telegram.Enabled},
		logger.Field{Key: "metrics_listen", Value: cfg.Metrics.Listen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg, log).Run(ctx); err != nil {
		log.Error("nexcrew stopped with error", err)
		return err
	}

	log.Info("nexcrew stopped gracefully")
	return nil
}
