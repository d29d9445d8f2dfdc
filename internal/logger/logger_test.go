package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json stdout", config: Config{Level: "debug", Format: "json", Output: "stdout"}},
		{name: "text stderr", config: Config{Level: "info", Format: "text", Output: "stderr"}},
		{name: "file output", config: Config{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "logs", "nexcrew.log")}},
		{name: "invalid level", config: Config{Level: "loud", Format: "json", Output: "stdout"}, wantErr: true},
		{name: "invalid format", config: Config{Level: "debug", Format: "xml", Output: "stdout"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_ErrorIncludesErrorField(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, slog.LevelDebug, "json")
	require.NoError(t, err)

	log.Error("write failed", errors.New("disk full"), Field{Key: "path", Value: "/tmp/run.md"})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "write failed", record["msg"])
	assert.Equal(t, "disk full", record["error"])
	assert.Equal(t, "/tmp/run.md", record["path"])
}

func TestLogger_WithAndNamed(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)

	log.Named("worklog").With(Field{Key: "path", Value: "a.md"}).Info("mutation applied")

	out := buf.String()
	assert.True(t, strings.Contains(out, "component=worklog"))
	assert.True(t, strings.Contains(out, "path=a.md"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, slog.LevelWarn, "text")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("hidden too")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotPanics(t, func() {
		log.Info("nothing")
		log.Error("nothing", errors.New("x"))
	})
}
