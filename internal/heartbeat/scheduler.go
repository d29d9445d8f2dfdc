package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/metrics"
)

var (
	ErrAlreadyStarted = errors.New("heartbeat scheduler is already started")
	ErrUnknownJob     = errors.New("unknown heartbeat job")
)

// Agent runs one prompt in an agent session and returns its reply.
type Agent interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Publisher receives scheduler events.
type Publisher interface {
	Publish(eventType string, payload map[string]any)
}

// Options configures a Scheduler.
type Options struct {
	JobsFile string

	// Unit is the length of one schedule "minute". Zero means time.Minute.
	Unit time.Duration

	// ReloadDebounce is the quiet period after the last job-file change
	// before reloading. Zero means the package default.
	ReloadDebounce time.Duration

	// Watch enables reloading on job-file changes.
	Watch bool
}

// Scheduler arms one timer per active job and runs fired jobs one at a time.
type Scheduler struct {
	opts      Options
	agent     Agent
	delivery  *Delivery
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
	runCtx  context.Context
	jobs    map[string]Job
	order   []string
	entries map[string]cron.EntryID
	busy    bool
	pending []string
	watcher *Watcher
	running sync.WaitGroup
}

// NewScheduler creates a scheduler. delivery may be nil to disable chat
// delivery.
func NewScheduler(opts Options, agent Agent, delivery *Delivery, log *logger.Logger) *Scheduler {
	if opts.Unit <= 0 {
		opts.Unit = time.Minute
	}
	if opts.ReloadDebounce <= 0 {
		opts.ReloadDebounce = constants.HeartbeatReloadDebounce
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		opts:     opts,
		agent:    agent,
		delivery: delivery,
		logger:   log.Named("heartbeat"),
		now:      time.Now,
		runCtx:   context.Background(),
		jobs:     make(map[string]Job),
		entries:  make(map[string]cron.EntryID),
	}
}

// SetPublisher attaches an event sink.
func (s *Scheduler) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetMetrics attaches collectors.
func (s *Scheduler) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Start loads the job file, arms timers and starts the file watcher. Runs
// use a context derived from ctx that is never cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.cron = cron.New()
	s.cron.Start()
	s.started = true
	s.runCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	s.Reload()

	if s.opts.Watch {
		w := NewWatcher(s.opts.JobsFile, s.opts.ReloadDebounce, s.Reload, s.logger)
		if err := w.Start(ctx); err != nil {
			s.logger.Error("job file watcher disabled", err)
		} else {
			s.mu.Lock()
			s.watcher = w
			s.mu.Unlock()
		}
	}

	s.logger.Info("heartbeat scheduler started",
		logger.Field{Key: "jobs_file", Value: s.opts.JobsFile},
		logger.Field{Key: "armed", Value: s.Armed()})
	return nil
}

// Stop disarms every timer and stops the watcher. A run in progress is not
// interrupted; it finishes and drains the queue. Use Wait to block until it
// is done.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.disarmLocked()
	c := s.cron
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		w.Stop()
	}
	c.Stop()
	s.metrics.SetArmedJobs(0)
	s.logger.Info("heartbeat scheduler stopped")
}

// Wait blocks until no run is in progress or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload rereads the job file and rebuilds every timer. A malformed file
// leaves the scheduler with no jobs.
func (s *Scheduler) Reload() {
	jobs, skipped, err := LoadJobs(s.opts.JobsFile)
	if err != nil {
		s.logger.Error("failed to load heartbeat jobs", err,
			logger.Field{Key: "file", Value: s.opts.JobsFile})
		jobs = nil
	}
	for _, e := range skipped {
		s.logger.Warn("skipping heartbeat job", logger.Field{Key: "error", Value: e})
	}

	s.mu.Lock()
	s.disarmLocked()
	s.jobs = make(map[string]Job, len(jobs))
	s.order = s.order[:0]
	for _, job := range jobs {
		s.jobs[job.ID] = job
		s.order = append(s.order, job.ID)
	}
	if s.started {
		for _, job := range jobs {
			if !job.Armed() {
				continue
			}
			id := job.ID
			s.entries[id] = s.cron.Schedule(cron.Every(job.Interval(s.opts.Unit)), cron.FuncJob(func() {
				s.fire(id)
			}))
		}
	}
	armed := len(s.entries)
	s.mu.Unlock()

	s.metrics.SetArmedJobs(armed)
	s.logger.Info("heartbeat jobs loaded",
		logger.Field{Key: "jobs", Value: len(jobs)},
		logger.Field{Key: "armed", Value: armed})
	s.publish(constants.EventHeartbeatReloaded, map[string]any{"jobs": len(jobs), "armed": armed})
}

func (s *Scheduler) disarmLocked() {
	for id, entry := range s.entries {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}
}

// Trigger fires a job now, as if its timer had ticked.
func (s *Scheduler) Trigger(id string) error {
	s.mu.Lock()
	_, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}

	s.fire(id)
	return nil
}

// Jobs returns the loaded jobs in file order.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	return jobs
}

// Pending returns the queued job ids, oldest first.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending)
}

// Busy reports whether a run is in progress.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Armed returns the number of armed timers.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fire either claims the execution slot and starts a run, or queues id
// behind the run in progress. An id already queued is not queued again.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	if s.busy {
		if slices.Contains(s.pending, id) {
			s.mu.Unlock()
			s.logger.Debug("heartbeat already queued", logger.Field{Key: "job_id", Value: id})
			return
		}
		s.pending = append(s.pending, id)
		n := len(s.pending)
		s.mu.Unlock()

		s.metrics.SetPending(n)
		s.publish(constants.EventHeartbeatPending, map[string]any{"count": n, "jobId": id})
		return
	}
	s.busy = true
	s.running.Add(1)
	ctx := s.runCtx
	s.mu.Unlock()

	go s.drain(ctx, id)
}

// drain runs id, then every queued job in order, handing the execution slot
// from one to the next without releasing it.
func (s *Scheduler) drain(ctx context.Context, id string) {
	defer s.running.Done()

	for {
		s.execute(ctx, id)

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.busy = false
			s.mu.Unlock()
			return
		}
		id = s.pending[0]
		s.pending = s.pending[1:]
		n := len(s.pending)
		s.mu.Unlock()

		s.metrics.SetPending(n)
		s.publish(constants.EventHeartbeatPending, map[string]any{"count": n})
	}
}

type outcome struct {
	silent    bool
	delivered bool
	err       error
}

func (s *Scheduler) execute(ctx context.Context, id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("queued heartbeat job no longer exists", logger.Field{Key: "job_id", Value: id})
		return
	}

	log := s.logger.With(logger.Field{Key: "job_id", Value: id})
	start := s.now()
	log.InfoCtx(ctx, "heartbeat started", logger.Field{Key: "name", Value: job.Label()})
	s.publish(constants.EventHeartbeatStarted, map[string]any{"jobId": id, "name": job.Label()})

	res := s.run(ctx, job)

	status := "ok"
	errText := ""
	switch {
	case res.err != nil:
		status = "error"
		errText = res.err.Error()
		log.ErrorCtx(ctx, "heartbeat failed", res.err)
	case res.silent:
		status = "silent"
	}
	duration := s.now().Sub(start)
	s.metrics.RecordHeartbeat(status, duration)

	log.InfoCtx(ctx, "heartbeat finished",
		logger.Field{Key: "status", Value: status},
		logger.Field{Key: "delivered", Value: res.delivered},
		logger.Field{Key: "duration", Value: duration.String()})
	s.publish(constants.EventHeartbeatFinished, map[string]any{
		"jobId":     id,
		"silent":    res.silent,
		"delivered": res.delivered,
		"error":     errText,
	})
}

func (s *Scheduler) run(ctx context.Context, job Job) (res outcome) {
	defer func() {
		if r := recover(); r != nil {
			res = outcome{err: fmt.Errorf("panic in heartbeat run: %v", r)}
		}
	}()

	reply, err := s.agent.Invoke(ctx, s.prompt(job))
	if err != nil {
		return outcome{err: fmt.Errorf("agent invocation: %w", err)}
	}

	if strings.Contains(reply, constants.SilentMarker) {
		return outcome{silent: true}
	}
	if s.delivery == nil || strings.TrimSpace(reply) == "" {
		return outcome{}
	}

	// a partial delivery is logged by Delivery and does not fail the run
	delivered, _ := s.delivery.Deliver(ctx, reply)
	return outcome{delivered: delivered}
}

func (s *Scheduler) prompt(job Job) string {
	body := strings.TrimSpace(job.Prompt)
	if body == "" {
		body = constants.HeartbeatDefaultPrompt
	}
	return fmt.Sprintf("[Heartbeat %s]\n\n%s", s.now().Format(time.RFC3339), body)
}

func (s *Scheduler) publish(eventType string, payload map[string]any) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, payload)
	}
}
