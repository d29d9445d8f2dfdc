package constants

import "time"

// SilentMarker in an agent result means "nothing to report".
const SilentMarker = "[SILENT]"

// HeartbeatDefaultPrompt is used when a job has no prompt of its own.
const HeartbeatDefaultPrompt = "Periodic check: review pending work and report anything that needs attention. Reply [SILENT] if there is nothing to report."

// HeartbeatReloadDebounce coalesces bursts of job-file change notifications.
const HeartbeatReloadDebounce = 500 * time.Millisecond

// ScheduleKindEvery is the only active schedule kind.
const ScheduleKindEvery = "every"

// Bus event types published by the heartbeat scheduler.
const (
	EventHeartbeatPending  = "heartbeat_pending"
	EventHeartbeatStarted  = "heartbeat_started"
	EventHeartbeatFinished = "heartbeat_finished"
	EventHeartbeatReloaded = "heartbeat_reloaded"
)

// TelegramMessageLimit is the maximum message length accepted by Telegram.
const TelegramMessageLimit = 4096

// ShutdownDrainTimeout bounds how long serve waits for an in-flight
// heartbeat run after the scheduler is stopped.
const ShutdownDrainTimeout = 30 * time.Second

// HTTPShutdownTimeout bounds the graceful HTTP server shutdown.
const HTTPShutdownTimeout = 5 * time.Second
