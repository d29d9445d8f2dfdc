package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update the settings document",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings document as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, a.Settings().Load())
	},
}

var settingsMergeCmd = &cobra.Command{
	Use:   "merge <json>",
	Short: "Merge a JSON patch into the settings document",
	Example: `  nexcrew settings merge '{"employees":{"backend":{"model":"opus"}}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch map[string]any
		if err := json.Unmarshal([]byte(args[0]), &patch); err != nil {
			return fmt.Errorf("invalid settings patch: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		next, err := a.Settings().Apply(patch)
		if err != nil {
			return err
		}
		return printJSON(cmd, next)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsMergeCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	if v == nil {
		v = map[string]any{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
