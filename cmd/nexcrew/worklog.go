package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/worklog"
)

var worklogCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Create, read and update orchestration worklogs",
}

var worklogCreateCmd = &cobra.Command{
	Use:   "create <summary>",
	Short: "Create a worklog and point latest.md at it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		rec, err := a.Worklogs().Create(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rec.Path)
		return nil
	},
}

var worklogLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest worklog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		latest, err := a.Worklogs().ReadLatest()
		if err != nil {
			return err
		}
		if latest == nil {
			return worklog.ErrNotFound
		}
		fmt.Fprint(cmd.OutOrStdout(), latest.Content)
		return nil
	},
}

var worklogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worklogs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		records, err := a.Worklogs().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range records {
			created := "-"
			if !r.Created.IsZero() {
				created = r.Created.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%s  %s\n", created, r.Path)
		}
		return nil
	},
}

var worklogAppendCmd = &cobra.Command{
	Use:   "append <path|latest> <section> <content|->",
	Short: "Append content to a section; - reads the content from stdin",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		path, err := resolveWorklog(a.Worklogs(), args[0])
		if err != nil {
			return err
		}

		content := args[2]
		if content == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = string(data)
		}
		return a.Worklogs().AppendToSection(cmd.Context(), path, args[1], content)
	},
}

var worklogStatusCmd = &cobra.Command{
	Use:   "status <path|latest> <status> <round>",
	Short: "Set the Status and Rounds lines",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		round, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid round %q: %w", args[2], err)
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		path, err := resolveWorklog(a.Worklogs(), args[0])
		if err != nil {
			return err
		}
		return a.Worklogs().UpdateStatus(cmd.Context(), path, args[1], round)
	},
}

var matrixRows []string

var worklogMatrixCmd = &cobra.Command{
	Use:   "matrix <path|latest>",
	Short: "Replace the agent status matrix",
	Example: `  nexcrew worklog matrix latest --row backend:api:3 --row frontend:ui:5:done`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]worklog.MatrixRow, 0, len(matrixRows))
		for _, value := range matrixRows {
			row, err := parseMatrixRow(value)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		path, err := resolveWorklog(a.Worklogs(), args[0])
		if err != nil {
			return err
		}
		return a.Worklogs().ReplaceMatrix(cmd.Context(), path, rows)
	},
}

var worklogPendingCmd = &cobra.Command{
	Use:   "pending [path|latest]",
	Short: "List agents whose matrix row is still in progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}

		target := "latest"
		if len(args) > 0 {
			target = args[0]
		}
		content, err := readWorklog(a.Worklogs(), target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range worklog.ParsePending(content) {
			fmt.Fprintf(out, "%s\t%s\tPhase %d (%s)\n", p.Agent, p.Role, p.CurrentPhase, worklog.PhaseName(p.CurrentPhase))
		}
		return nil
	},
}

func init() {
	worklogMatrixCmd.Flags().StringArrayVar(&matrixRows, "row", nil, "Matrix row as agent:role:phase[:done] (repeatable)")

	worklogCmd.AddCommand(worklogCreateCmd)
	worklogCmd.AddCommand(worklogLatestCmd)
	worklogCmd.AddCommand(worklogListCmd)
	worklogCmd.AddCommand(worklogAppendCmd)
	worklogCmd.AddCommand(worklogStatusCmd)
	worklogCmd.AddCommand(worklogMatrixCmd)
	worklogCmd.AddCommand(worklogPendingCmd)
}

// resolveWorklog maps "latest" to the file behind the alias.
func resolveWorklog(store *worklog.Store, target string) (string, error) {
	if target != "latest" {
		return target, nil
	}
	latest, err := store.ReadLatest()
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", worklog.ErrNotFound
	}
	return latest.Path, nil
}

func readWorklog(store *worklog.Store, target string) (string, error) {
	if target == "latest" {
		latest, err := store.ReadLatest()
		if err != nil {
			return "", err
		}
		if latest == nil {
			return "", worklog.ErrNotFound
		}
		return latest.Content, nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read worklog: %w", err)
	}
	return string(data), nil
}

// parseMatrixRow parses agent:role:phase[:done].
func parseMatrixRow(value string) (worklog.MatrixRow, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return worklog.MatrixRow{}, fmt.Errorf("invalid row %q: want agent:role:phase[:done]", value)
	}
	if parts[0] == "" {
		return worklog.MatrixRow{}, fmt.Errorf("invalid row %q: empty agent", value)
	}
	phase, err := strconv.Atoi(parts[2])
	if err != nil || phase < 1 {
		return worklog.MatrixRow{}, errors.Join(fmt.Errorf("invalid row %q: bad phase", value), err)
	}
	row := worklog.MatrixRow{Agent: parts[0], Role: parts[1], CurrentPhase: phase}
	if len(parts) == 4 {
		if parts[3] != "done" {
			return worklog.MatrixRow{}, fmt.Errorf("invalid row %q: last field must be done", value)
		}
		row.Completed = true
	}
	return row, nil
}
