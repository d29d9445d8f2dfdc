package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aatumaykin/nexcrew/internal/constants"
)

// Load reads the TOML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML data, then applies defaults and env expansion.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every default applied. Used when no
// config file exists yet.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	expandEnvVars(&cfg)
	return &cfg
}

// Validate returns every problem found in the configuration.
func (c *Config) Validate() []error {
	var errs []error

	if c.Workspace.Path == "" {
		errs = append(errs, fmt.Errorf("workspace.path is required"))
	} else if err := validatePath(c.Workspace.Path, "workspace.path"); err != nil {
		errs = append(errs, err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.Heartbeat.ReloadDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("heartbeat.reload_debounce_ms must be >= 0"))
	}
	if c.Heartbeat.Enabled && c.Agent.Command == "" {
		errs = append(errs, fmt.Errorf("agent.command is required when heartbeat is enabled"))
	}

	if c.Telegram.Enabled {
		if err := validateTelegramToken(c.Telegram.Token); err != nil {
			errs = append(errs, err)
		}
		for _, chat := range c.Telegram.AllowedChats {
			if strings.TrimSpace(chat) == "" {
				errs = append(errs, fmt.Errorf("telegram.allowed_chats contains an empty chat id"))
			}
		}
	}

	return errs
}

func validateTelegramToken(token string) error {
	if token == "" {
		return fmt.Errorf("telegram.token is required when telegram is enabled")
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return fmt.Errorf("telegram token has invalid format (expected <bot_id>:<token>, got: %s)", maskTelegramToken(token))
	}

	botID := parts[0]
	if len(botID) < 3 || len(botID) > 15 {
		return fmt.Errorf("telegram token has invalid bot ID length (expected 3-15 digits, got %d)", len(botID))
	}
	for _, r := range botID {
		if r < '0' || r > '9' {
			return fmt.Errorf("telegram token has invalid bot ID (expected digits only, got: %s)", botID)
		}
	}

	if l := len(parts[1]); l < 10 || l > 50 {
		return fmt.Errorf("telegram token has invalid token length (expected 10-50 characters, got %d)", l)
	}

	return nil
}

func validatePath(path, fieldName string) error {
	if strings.HasPrefix(path, "~") {
		return nil
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Workspace.Path == "" {
		c.Workspace.Path = constants.DefaultWorkspacePath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Heartbeat.JobsFile == "" {
		c.Heartbeat.JobsFile = constants.HeartbeatFile
	}
	if c.Heartbeat.ReloadDebounceMS == 0 {
		c.Heartbeat.ReloadDebounceMS = int(constants.HeartbeatReloadDebounce.Milliseconds())
	}

	if c.Telegram.SendTimeoutSeconds == 0 {
		c.Telegram.SendTimeoutSeconds = 10
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "nexcrew"
	}
}

func expandEnvVars(c *Config) {
	c.Telegram.Token = expandEnv(c.Telegram.Token)
	c.Workspace.Path = expandHome(expandEnv(c.Workspace.Path))
	c.Heartbeat.JobsFile = expandHome(expandEnv(c.Heartbeat.JobsFile))
	c.Worklog.Dir = expandHome(expandEnv(c.Worklog.Dir))
	c.Agent.Command = expandEnv(c.Agent.Command)
	c.Agent.WorkDir = expandHome(expandEnv(c.Agent.WorkDir))
	for i, chat := range c.Telegram.AllowedChats {
		c.Telegram.AllowedChats[i] = expandEnv(chat)
	}
}

// expandEnv expands a value of the form ${VAR} or ${VAR:default}.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val
		}
		return parts[1]
	}

	return os.Getenv(content)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
