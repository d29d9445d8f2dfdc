// Package agent runs prompts through an external agent CLI.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

// PromptPlaceholder in an argument is replaced by the prompt. When no
// argument contains it, the prompt is passed as the last argument.
const PromptPlaceholder = "{prompt}"

// ErrNoCommand is returned when no agent command is configured.
var ErrNoCommand = errors.New("agent command is not configured")

// Runner starts one agent process per prompt and returns what it printed.
type Runner struct {
	command string
	args    []string
	workDir string
	logger  *logger.Logger
}

// NewRunner creates a runner from the [agent] config section.
func NewRunner(cfg config.AgentConfig, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		command: cfg.Command,
		args:    cfg.Args,
		workDir: cfg.WorkDir,
		logger:  log.Named("agent"),
	}
}

// Invoke runs the agent with prompt and returns its trimmed stdout. A
// non-zero exit is an error carrying the exit code and stderr.
func (r *Runner) Invoke(ctx context.Context, prompt string) (string, error) {
	if r.command == "" {
		return "", ErrNoCommand
	}

	cmd := exec.CommandContext(ctx, r.command, r.argv(prompt)...)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.InfoCtx(ctx, "invoking agent",
		logger.Field{Key: "command", Value: r.command},
		logger.Field{Key: "prompt_len", Value: len(prompt)})

	if err := cmd.Run(); err != nil {
		r.logger.ErrorCtx(ctx, "agent invocation failed", err,
			logger.Field{Key: "exit_code", Value: exitCode(err)})
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("agent exited with code %d: %s: %w", exitCode(err), msg, err)
		}
		return "", fmt.Errorf("agent exited with code %d: %w", exitCode(err), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) argv(prompt string) []string {
	args := make([]string, 0, len(r.args)+1)
	substituted := false
	for _, a := range r.args {
		if strings.Contains(a, PromptPlaceholder) {
			a = strings.ReplaceAll(a, PromptPlaceholder, prompt)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, prompt)
	}
	return args
}

// exitCode returns the process exit code, or -1 when the process did not
// exit normally.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
