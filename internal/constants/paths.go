package constants

// DefaultEnvPath is the default path to the .env file
const DefaultEnvPath = "./.env"

// DefaultConfigPath is the default path to the config.toml file
const DefaultConfigPath = "./config.toml"

// DefaultWorkspacePath is the workspace used when the config leaves it empty.
const DefaultWorkspacePath = "~/.nexcrew"

// HeartbeatFile is the job-definition file name inside the workspace.
const HeartbeatFile = "heartbeat.yaml"

// SettingsFile is the persisted settings document inside the workspace.
const SettingsFile = "settings.json"

// WorklogDir is the worklog directory inside the workspace.
const WorklogDir = "worklogs"

// WorklogLatestLink is the alias that always points at the newest worklog.
const WorklogLatestLink = "latest.md"

// PIDFile marks the workspace owned by a running daemon.
const PIDFile = ".nexcrew.pid"
