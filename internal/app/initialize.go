package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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

// New builds every component from cfg. Nothing is started and no file is
// written.
func New(cfg *config.Config, log *logger.Logger) *App {
	if log == nil {
		log = logger.Discard()
	}

	a := &App{
		config:   cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
		queue:    lock.NewQueue(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(cfg.Metrics.Namespace, a.registry)

	a.hub = bus.NewHub(log)
	a.bus = bus.New(log)
	a.bus.SetMetrics(a.metrics)
	a.bus.SetSink(a.hub)
	a.bus.Subscribe(func(eventType string, payload map[string]any) {
		log.Debug("event published",
			logger.Field{Key: "type", Value: eventType},
			logger.Field{Key: "payload", Value: payload})
	})

	a.policy = commands.NewPolicy(commands.DefaultCatalog())
	a.help = commands.NewHelp(a.policy)

	a.settings = settings.NewStore(cfg.SettingsPath(), a.queue, log)

	a.worklogs = worklog.NewStore(cfg.WorklogDir(), a.queue, log)
	a.worklogs.SetPublisher(a.bus)
	a.worklogs.SetMetrics(a.metrics)

	a.telegram = telegram.New(cfg.Telegram, a.policy, log)
	a.telegram.SetWorklogs(a.worklogs)

	var delivery *heartbeat.Delivery
	if cfg.Telegram.Enabled {
		delivery = heartbeat.NewDelivery(a.telegram.Sender(), a.telegram.Chats(), cfg.Telegram.AllowedChats, log)
		delivery.SetMetrics(a.metrics)
	}

	a.agent = agent.NewRunner(cfg.Agent, log)
	a.scheduler = heartbeat.NewScheduler(heartbeat.Options{
		JobsFile:       cfg.JobsPath(),
		ReloadDebounce: cfg.Heartbeat.ReloadDebounce(),
		Watch:          true,
	}, a.agent, delivery, log)
	a.scheduler.SetPublisher(a.bus)
	a.scheduler.SetMetrics(a.metrics)
	a.telegram.SetHeartbeats(a.scheduler)

	return a
}

// Handler serves /metrics, the /events stream and /healthz.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	mux.Handle("/events", a.hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
