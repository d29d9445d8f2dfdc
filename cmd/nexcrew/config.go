package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/constants"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		if err := config.LoadEnvOptional(envPath); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		cfg, err := config.Load(path)
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

		fmt.Fprintln(cmd.OutOrStdout(), constants.MsgConfigValid)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		red := cfg.Redacted()
		if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(red); err != nil {
			return errors.Join(errors.New("failed to encode config"), err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
