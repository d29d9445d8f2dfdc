// Package bus is the process-wide broadcast primitive.
//
// Publish fans an event out to every in-process listener and, when a live
// connection set is registered, to every open transport connection as a JSON
// envelope. Delivery is best effort: a panicking listener or a failing
// connection is logged and never reaches the publisher.
package bus

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/metrics"
)

var ErrConnClosed = errors.New("connection is closed")

// Listener receives every published event.
type Listener func(eventType string, payload map[string]any)

// Conn is one live transport connection.
type Conn interface {
	Send(data []byte) error
	Open() bool
}

// ConnectionSet exposes the connections that are currently attached.
type ConnectionSet interface {
	Connections() []Conn
}

type subscription struct {
	id       string
	listener Listener
}

// Bus is safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	listeners []subscription
	sink      ConnectionSet
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New creates a bus without a sink.
func New(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Discard()
	}
	return &Bus{
		logger: log.Named("bus"),
		now:    time.Now,
	}
}

// SetMetrics attaches collectors. Safe to skip.
func (b *Bus) SetMetrics(m *metrics.Metrics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics = m
}

// SetSink registers the live connection set. A nil set detaches it.
func (b *Bus) SetSink(set ConnectionSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = set
}

// Subscribe adds a listener and returns its id.
func (b *Bus) Subscribe(l Listener) string {
	id := uuid.New().String()

	b.mu.Lock()
	b.listeners = append(b.listeners, subscription{id: id, listener: l})
	b.mu.Unlock()

	return id
}

// Unsubscribe removes a listener. It reports whether id was registered.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers an event to the sink and to every listener. Listeners run
// synchronously, in subscription order, on the publisher's goroutine.
func (b *Bus) Publish(eventType string, payload map[string]any) {
	b.mu.RLock()
	listeners := make([]subscription, len(b.listeners))
	copy(listeners, b.listeners)
	sink := b.sink
	m := b.metrics
	b.mu.RUnlock()

	m.RecordEvent(eventType)

	if sink != nil {
		b.broadcast(sink, eventType, payload, m)
	}

	for _, s := range listeners {
		b.invoke(s, eventType, payload, m)
	}
}

func (b *Bus) broadcast(sink ConnectionSet, eventType string, payload map[string]any, m *metrics.Metrics) {
	data, err := Envelope(eventType, payload, b.now())
	if err != nil {
		b.logger.Error("failed to encode event", err, logger.Field{Key: "type", Value: eventType})
		return
	}

	for _, conn := range sink.Connections() {
		if conn == nil || !conn.Open() {
			continue
		}
		if err := conn.Send(data); err != nil {
			m.RecordListenerFailure()
			b.logger.Warn("event send failed",
				logger.Field{Key: "type", Value: eventType},
				logger.Field{Key: "error", Value: err})
		}
	}
}

func (b *Bus) invoke(s subscription, eventType string, payload map[string]any, m *metrics.Metrics) {
	defer func() {
		if r := recover(); r != nil {
			m.RecordListenerFailure()
			b.logger.Error("listener panicked", fmt.Errorf("%v", r),
				logger.Field{Key: "listener_id", Value: s.id},
				logger.Field{Key: "type", Value: eventType})
		}
	}()
	s.listener(eventType, payload)
}

// Envelope encodes an event for transport: the payload fields plus "type"
// and "ts" (unix milliseconds). Type and ts take precedence over payload
// fields of the same name.
func Envelope(eventType string, payload map[string]any, ts time.Time) ([]byte, error) {
	env := make(map[string]any, len(payload)+2)
	maps.Copy(env, payload)
	env["type"] = eventType
	env["ts"] = ts.UnixMilli()

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", eventType, err)
	}
	return data, nil
}
