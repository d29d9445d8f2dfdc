package telegram

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aatumaykin/nexcrew/internal/commands"
	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/heartbeat"
	"github.com/aatumaykin/nexcrew/internal/version"
	"github.com/aatumaykin/nexcrew/internal/worklog"
)

// Heartbeats is the scheduler surface the bot drives.
type Heartbeats interface {
	Jobs() []heartbeat.Job
	Trigger(id string) error
	Busy() bool
	Pending() []string
}

// Worklogs is the worklog surface the bot reads.
type Worklogs interface {
	ReadLatest() (*worklog.Latest, error)
	List() ([]worklog.Record, error)
}

// parseCommand splits "/name@bot args" into name and args. Commands
// addressed to another bot are ignored.
func parseCommand(text, botName string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text, " ")
	head = strings.TrimPrefix(head, "/")
	if base, target, addressed := strings.Cut(head, "@"); addressed {
		if botName != "" && !strings.EqualFold(target, botName) {
			return "", "", false
		}
		head = base
	}
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(rest), true
}

// dispatch runs a chat command and returns the reply. handled is false for
// messages that are not commands for this bot.
func (c *Connector) dispatch(ctx context.Context, text string) (reply string, handled bool) {
	name, args, ok := parseCommand(text, c.username)
	if !ok {
		return "", false
	}

	entry, visible := c.policy.Lookup(commands.Telegram, name)
	if !visible {
		return fmt.Sprintf(constants.MsgUnknownCommand, strings.ToLower(name)), true
	}
	cmd := entry.Descriptor.Name
	if entry.Grade(commands.Telegram) != commands.Full {
		return fmt.Sprintf(constants.MsgNotExecutable, cmd), true
	}

	switch cmd {
	case constants.CommandHelp:
		if args == "" {
			return c.help.List(commands.Telegram), true
		}
		res := c.help.Detail(commands.Telegram, args)
		if !res.OK {
			return res.Message, true
		}
		return res.Text, true
	case constants.CommandStart:
		return constants.MsgWelcome + c.help.List(commands.Telegram), true
	case constants.CommandStatus:
		return c.status(), true
	case constants.CommandHeartbeat:
		return c.heartbeatCommand(args), true
	case constants.CommandWorklog:
		return c.worklogCommand(ctx, args), true
	case constants.CommandVersion:
		return version.Summary(), true
	default:
		return fmt.Sprintf(constants.MsgNoSession, cmd), true
	}
}

func (c *Connector) status() string {
	if c.heartbeats == nil {
		return constants.MsgNoHeartbeats
	}
	return fmt.Sprintf(constants.MsgStatusLine,
		len(c.heartbeats.Jobs()), c.heartbeats.Busy(), len(c.heartbeats.Pending()))
}

func (c *Connector) heartbeatCommand(args string) string {
	if c.heartbeats == nil {
		return constants.MsgNoHeartbeats
	}

	fields := strings.Fields(args)
	switch {
	case len(fields) == 0 || fields[0] == "list":
		return listJobs(c.heartbeats.Jobs())
	case fields[0] == "run" && len(fields) == 2:
		id := fields[1]
		if err := c.heartbeats.Trigger(id); err != nil {
			if errors.Is(err, heartbeat.ErrUnknownJob) {
				return fmt.Sprintf(constants.MsgHeartbeatUnknown, id)
			}
			return err.Error()
		}
		return fmt.Sprintf(constants.MsgHeartbeatQueued, id)
	default:
		return constants.MsgHeartbeatUsage
	}
}

func listJobs(jobs []heartbeat.Job) string {
	if len(jobs) == 0 {
		return constants.MsgNoHeartbeats
	}

	var b strings.Builder
	for _, j := range jobs {
		state := "off"
		if j.Armed() {
			state = fmt.Sprintf("every %d min", j.Schedule.Minutes)
		}
		fmt.Fprintf(&b, "%s - %s (%s)\n", j.ID, j.Label(), state)
	}
	return b.String()
}

func (c *Connector) worklogCommand(ctx context.Context, args string) string {
	if c.worklogs == nil {
		return constants.MsgNoWorklog
	}

	if strings.TrimSpace(args) == "list" {
		records, err := c.worklogs.List()
		if err != nil {
			c.logger.ErrorCtx(ctx, "failed to list worklogs", err)
			return err.Error()
		}
		if len(records) == 0 {
			return constants.MsgNoWorklog
		}
		var b strings.Builder
		for _, r := range records {
			fmt.Fprintf(&b, "%s  %s\n", r.Created.Format("2006-01-02 15:04"), filepath.Base(r.Path))
		}
		return b.String()
	}

	latest, err := c.worklogs.ReadLatest()
	if err != nil {
		c.logger.ErrorCtx(ctx, "failed to read latest worklog", err)
		return err.Error()
	}
	if latest == nil {
		return constants.MsgNoWorklog
	}
	return latest.Content
}
