// Package config provides configuration loading and validation for nexcrew.
// It reads a TOML file, applies defaults and expands environment variables.
//
// Configuration structure:
//   - [workspace]: workspace directory holding jobs, settings and worklogs
//   - [logging]: log level, format and output
//   - [heartbeat]: job-definition file and reload debounce
//   - [telegram]: bot token and delivery targets for heartbeat results
//   - [worklog]: worklog directory override
//   - [agent]: external agent CLI used for heartbeat runs
//   - [metrics]: prometheus endpoint
//
// Environment variables can be referenced using ${VAR} or ${VAR:default},
// for example: token = "${TELEGRAM_TOKEN}"
package config

import (
	"path/filepath"
	"time"

	"github.com/aatumaykin/nexcrew/internal/constants"
)

// Config represents the main application configuration.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Logging   LoggingConfig   `toml:"logging"`
	Heartbeat HeartbeatConfig `toml:"heartbeat"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Worklog   WorklogConfig   `toml:"worklog"`
	Agent     AgentConfig     `toml:"agent"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type WorkspaceConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// HeartbeatConfig configures the recurring job scheduler.
type HeartbeatConfig struct {
	Enabled          bool   `toml:"enabled"`
	JobsFile         string `toml:"jobs_file"`
	ReloadDebounceMS int    `toml:"reload_debounce_ms"`
}

// ReloadDebounce returns the debounce window as a duration.
func (h HeartbeatConfig) ReloadDebounce() time.Duration {
	return time.Duration(h.ReloadDebounceMS) * time.Millisecond
}

// TelegramConfig configures heartbeat delivery to Telegram chats.
type TelegramConfig struct {
	Enabled            bool     `toml:"enabled"`
	Token              string   `toml:"token"`
	AllowedChats       []string `toml:"allowed_chats"`
	SendTimeoutSeconds int      `toml:"send_timeout_seconds"`
	QuietMode          bool     `toml:"quiet_mode"`
}

type WorklogConfig struct {
	Dir string `toml:"dir"`
}

// AgentConfig describes the external agent CLI invoked for heartbeat runs.
type AgentConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	WorkDir string   `toml:"work_dir"`
}

type MetricsConfig struct {
	Listen    string `toml:"listen"`
	Namespace string `toml:"namespace"`
}

// JobsPath returns the absolute job-definition file path.
func (c *Config) JobsPath() string {
	if filepath.IsAbs(c.Heartbeat.JobsFile) {
		return c.Heartbeat.JobsFile
	}
	return filepath.Join(c.Workspace.Path, c.Heartbeat.JobsFile)
}

// SettingsPath returns the persisted settings document path.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Workspace.Path, constants.SettingsFile)
}

// WorklogDir returns the directory holding worklog files.
func (c *Config) WorklogDir() string {
	if c.Worklog.Dir == "" {
		return filepath.Join(c.Workspace.Path, constants.WorklogDir)
	}
	if filepath.IsAbs(c.Worklog.Dir) {
		return c.Worklog.Dir
	}
	return filepath.Join(c.Workspace.Path, c.Worklog.Dir)
}
