package constants

// Command names shared between the registry and the front-ends.
const (
	CommandHelp        = "help"
	CommandStatus      = "status"
	CommandHeartbeat   = "heartbeat"
	CommandWorklog     = "worklog"
	CommandSettings    = "settings"
	CommandEmployees   = "employees"
	CommandOrchestrate = "orchestrate"
	CommandStop        = "stop"
	CommandModel       = "model"
	CommandMemory      = "memory"
	CommandSkills      = "skills"
	CommandClear       = "clear"
	CommandVersion     = "version"
	CommandReset       = "reset"
	CommandStart       = "start"
	CommandExit        = "exit"
	CommandBrowser     = "browser"
	CommandDebug       = "debug"
)
