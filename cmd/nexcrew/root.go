package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/app"
	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

var (
	configPath string
	envPath    string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nexcrew",
	Short: "nexcrew - orchestration daemon for employee agents",
	Long: `nexcrew runs recurring heartbeat checks through an external agent CLI,
keeps one markdown worklog per orchestration run and exposes the same command
catalog to the shell, the dashboard and the Telegram bot.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", constants.DefaultEnvPath, "Path to .env file loaded before the config")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(worklogCmd)
	rootCmd.AddCommand(heartbeatCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.SetHelpCommand(helpCmd)
}

// loadConfig loads the .env file and the config. A missing config file at
// the default path yields the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvOptional(envPath); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
			cfg = config.Default()
		} else {
			return nil, err
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newCLILogger logs warnings and above as text on stderr, so command output
// on stdout stays clean.
func newCLILogger(cfg *config.Config) (*logger.Logger, error) {
	level := "warn"
	if logLevel != "" {
		level = cfg.Logging.Level
	}
	return logger.New(logger.Config{Level: level, Format: "text", Output: "stderr"})
}

// openApp builds the components for a one-shot command.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newCLILogger(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log), nil
}
