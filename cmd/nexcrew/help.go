package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/commands"
)

// helpCmd renders the shared command catalog for the cli interface. Flag
// help for the binary itself stays on --help.
var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "List crew commands or show details for one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		help := commands.NewHelp(commands.NewPolicy(commands.DefaultCatalog()))
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			fmt.Fprint(out, help.List(commands.CLI))
			return nil
		}

		res := help.Detail(commands.CLI, args[0])
		if !res.OK {
			return fmt.Errorf("%s", res.Message)
		}
		fmt.Fprint(out, res.Text)
		return nil
	},
}
