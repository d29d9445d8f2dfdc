// Package app wires the crew components together. It is the composition
// root shared by the serve daemon and the one-shot CLI commands.
package app

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/nexcrew/internal/agent"
	"github.com/aatumaykin/nexcrew/internal/bus"
	"github.com/aatumaykin/nexcrew/internal/channels/telegram"
	"github.com/aatumaykin/nexcrew/internal/commands"
	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/heartbeat"
	"github.com/aatumaykin/nexcrew/internal/lock"
	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/metrics"
	"github.com/aatumaykin/nexcrew/internal/settings"
	"github.com/aatumaykin/nexcrew/internal/worklog"
)

// App holds every component. New builds them without starting anything;
// Start brings up the long-running parts.
type App struct {
	config *config.Config
	logger *logger.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	bus *bus.Bus
	hub *bus.Hub

	policy *commands.Policy
	help   *commands.Help

	queue     *lock.Queue
	settings  *settings.Store
	worklogs  *worklog.Store
	agent     *agent.Runner
	scheduler *heartbeat.Scheduler
	telegram  *telegram.Connector

	server      *http.Server
	stopStreams func()
	releasePID  func()

	mu      sync.Mutex
	started bool
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.config
}

// Bus returns the process-wide broadcast bus.
func (a *App) Bus() *bus.Bus {
	return a.bus
}

// Policy returns the command policy over the default catalog.
func (a *App) Policy() *commands.Policy {
	return a.policy
}

// Help returns the help renderer.
func (a *App) Help() *commands.Help {
	return a.help
}

// Settings returns the settings store.
func (a *App) Settings() *settings.Store {
	return a.settings
}

// Worklogs returns the worklog store.
func (a *App) Worklogs() *worklog.Store {
	return a.worklogs
}

// Scheduler returns the heartbeat scheduler.
func (a *App) Scheduler() *heartbeat.Scheduler {
	return a.scheduler
}

// Registry returns the prometheus registry holding the app collectors.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}
