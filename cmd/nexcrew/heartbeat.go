package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/heartbeat"
)

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Inspect and run heartbeat jobs",
}

var heartbeatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs from the job file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jobs, skipped, err := heartbeat.LoadJobs(cfg.JobsPath())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(jobs) == 0 {
			fmt.Fprintln(out, constants.MsgNoHeartbeats)
		}
		for _, j := range jobs {
			state := "inert"
			if j.Armed() {
				state = fmt.Sprintf("every %dm", j.Schedule.Minutes)
			} else if !j.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", j.ID, j.Label(), state)
		}
		for _, e := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
		}
		return nil
	},
}

// heartbeatRunCmd runs one job in the foreground and waits for it. The
// telegram bot is not started here, so results are reported on stdout only.
var heartbeatRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run one job now and wait for it to finish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		a.Bus().Subscribe(func(eventType string, payload map[string]any) {
			if eventType != constants.EventHeartbeatFinished {
				return
			}
			switch {
			case payload["error"] != "":
				fmt.Fprintf(out, "%s: failed: %v\n", payload["jobId"], payload["error"])
			case payload["silent"] == true:
				fmt.Fprintf(out, "%s: nothing to report\n", payload["jobId"])
			default:
				fmt.Fprintf(out, "%s: done (delivered: %v)\n", payload["jobId"], payload["delivered"])
			}
		})

		sched := a.Scheduler()
		sched.Reload()
		if err := sched.Trigger(args[0]); err != nil {
			return err
		}
		return sched.Wait(cmd.Context())
	},
}

func init() {
	heartbeatCmd.AddCommand(heartbeatListCmd)
	heartbeatCmd.AddCommand(heartbeatRunCmd)
}
