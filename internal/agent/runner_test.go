package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexcrew/internal/config"
)

func TestRunner_NoCommand(t *testing.T) {
	r := NewRunner(config.AgentConfig{}, nil)

	_, err := r.Invoke(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestRunner_PromptAsLastArgument(t *testing.T) {
	r := NewRunner(config.AgentConfig{Command: "echo", Args: []string{"-n", "reply:"}}, nil)

	out, err := r.Invoke(context.Background(), "check the build")
	require.NoError(t, err)
	assert.Equal(t, "reply: check the build", out)
}

func TestRunner_PromptPlaceholder(t *testing.T) {
	r := NewRunner(config.AgentConfig{Command: "sh", Args: []string{"-c", "printf '%s\\n' \"$1\"", "agent", "<{prompt}>"}}, nil)

	out, err := r.Invoke(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "<a b>", out)
	assert.Equal(t, []string{"-c", "printf '%s\\n' \"$1\"", "agent", "<x>"}, r.argv("x"))
}

func TestRunner_WorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here"), 0644))
	r := NewRunner(config.AgentConfig{Command: "sh", Args: []string{"-c", "cat marker.txt", "{prompt}"}, WorkDir: dir}, nil)

	out, err := r.Invoke(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "here", out)
}

func TestRunner_NonZeroExit(t *testing.T) {
	r := NewRunner(config.AgentConfig{Command: "sh", Args: []string{"-c", "echo session lost >&2; exit 3", "{prompt}"}}, nil)

	_, err := r.Invoke(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 3")
	assert.Contains(t, err.Error(), "session lost")
}

func TestRunner_ContextCancel(t *testing.T) {
	r := NewRunner(config.AgentConfig{Command: "sleep", Args: []string{"{prompt}"}}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Invoke(ctx, "5")
	assert.Error(t, err)
}
