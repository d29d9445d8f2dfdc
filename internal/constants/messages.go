package constants

// Chat bot replies.
const (
	MsgUnknownCommand   = "Unknown command: /%s. Send /help for the list."
	MsgNotExecutable    = "/%s is read-only here. Use the CLI or the dashboard to run it."
	MsgHeartbeatQueued  = "Heartbeat %q triggered."
	MsgHeartbeatUnknown = "No heartbeat job with id %q."
	MsgNoWorklog        = "No worklog yet."
	MsgStatusLine       = "Heartbeat: %d job(s), busy=%t, pending=%d"
	MsgPartialDelivery  = "heartbeat delivery incomplete"
	MsgNoSession        = "/%s needs an agent session and none is attached to this bot."
	MsgNoHeartbeats     = "No heartbeat jobs loaded."
	MsgHeartbeatUsage   = "Usage: /heartbeat [list|run <id>]"
	MsgWelcome          = "nexcrew is running. Commands:\n\n"
	MsgNotAllowed       = "This chat is not allowed to use the bot."
)

// CLI output.
const (
	MsgConfigLoadError = "❌ Failed to load configuration: %v\n"
	MsgConfigInvalid   = "❌ Configuration validation failed:\n"
	MsgConfigValid     = "✅ Configuration is valid"
)
