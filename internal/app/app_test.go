package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/constants"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace.Path = t.TempDir()
	cfg.Heartbeat.Enabled = true
	return cfg
}

func TestNew_DoesNotTouchDisk(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workspace.Path = filepath.Join(cfg.Workspace.Path, "later")

	a := New(cfg, nil)
	require.NotNil(t, a.Scheduler())
	require.NotNil(t, a.Worklogs())

	_, err := os.Stat(cfg.Workspace.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestHandler(t *testing.T) {
	a := New(testConfig(t), nil)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	_, err := a.Worklogs().Create(context.Background(), "wire the app")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `nexcrew_bus_events_total{type="worklog_created"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStartAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, nil)
	ctx := context.Background()

	require.NoError(t, a.Start(ctx))
	assert.Error(t, a.Start(ctx))

	pidPath := filepath.Join(cfg.Workspace.Path, constants.PIDFile)
	pid, err := readPID(pidPath)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())

	_, err = os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := New(testConfig(t), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAcquirePID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.PIDFile)

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())+"\n"), 0600))
	_, err := acquirePID(dir)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	release, err := acquirePID(dir)
	require.NoError(t, err)

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestIsRunning(t *testing.T) {
	assert.True(t, isRunning(os.Getpid()))
	assert.False(t, isRunning(0))
	assert.False(t, isRunning(-5))
}
