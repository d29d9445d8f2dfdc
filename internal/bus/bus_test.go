package bus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/metrics"
)

type fakeConn struct {
	mu     sync.Mutex
	open   bool
	err    error
	frames [][]byte
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Open() bool { return c.open }

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

type staticSet []Conn

func (s staticSet) Connections() []Conn { return s }

func newTestBus() *Bus {
	b := New(logger.Discard())
	b.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return b
}

func TestBus_ListenersReceiveInOrder(t *testing.T) {
	b := newTestBus()

	var calls []string
	b.Subscribe(func(eventType string, payload map[string]any) {
		calls = append(calls, "first:"+eventType)
	})
	b.Subscribe(func(eventType string, payload map[string]any) {
		calls = append(calls, "second:"+eventType)
		assert.Equal(t, 2, payload["count"])
	})

	b.Publish("heartbeat_pending", map[string]any{"count": 2})

	assert.Equal(t, []string{"first:heartbeat_pending", "second:heartbeat_pending"}, calls)
}

func TestBus_PanickingListenerDoesNotStopOthers(t *testing.T) {
	b := newTestBus()
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)
	b.SetMetrics(m)

	reached := false
	b.Subscribe(func(string, map[string]any) { panic("boom") })
	b.Subscribe(func(string, map[string]any) { reached = true })

	assert.NotPanics(t, func() {
		b.Publish("x", nil)
	})
	assert.True(t, reached)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := newTestBus()

	count := 0
	id := b.Subscribe(func(string, map[string]any) { count++ })

	b.Publish("x", nil)
	assert.True(t, b.Unsubscribe(id))
	assert.False(t, b.Unsubscribe(id))
	b.Publish("x", nil)

	assert.Equal(t, 1, count)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	b := newTestBus()

	var id string
	second := 0
	id = b.Subscribe(func(string, map[string]any) { b.Unsubscribe(id) })
	b.Subscribe(func(string, map[string]any) { second++ })

	b.Publish("x", nil)
	b.Publish("x", nil)

	assert.Equal(t, 2, second)
}

func TestBus_SinkGetsEnvelopeOnOpenConnections(t *testing.T) {
	b := newTestBus()

	open := &fakeConn{open: true}
	closed := &fakeConn{open: false}
	failing := &fakeConn{open: true, err: errors.New("broken pipe")}
	later := &fakeConn{open: true}
	b.SetSink(staticSet{open, closed, failing, later})

	b.Publish("heartbeat_finished", map[string]any{"jobId": "daily", "silent": true})

	require.Len(t, open.received(), 1)
	assert.Empty(t, closed.received())
	require.Len(t, later.received(), 1)

	var env map[string]any
	require.NoError(t, json.Unmarshal(open.received()[0], &env))
	assert.Equal(t, "heartbeat_finished", env["type"])
	assert.Equal(t, "daily", env["jobId"])
	assert.Equal(t, true, env["silent"])
	assert.Equal(t, float64(1700000000123), env["ts"])
}

func TestBus_ListenersRunWithoutSink(t *testing.T) {
	b := newTestBus()

	got := ""
	b.Subscribe(func(eventType string, _ map[string]any) { got = eventType })
	b.Publish("heartbeat_reloaded", map[string]any{"jobs": 1})

	assert.Equal(t, "heartbeat_reloaded", got)
}

func TestBus_MetricsCountEventsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)

	b := newTestBus()
	b.SetMetrics(m)
	b.SetSink(staticSet{&fakeConn{open: true, err: errors.New("gone")}})
	b.Subscribe(func(string, map[string]any) { panic("bad listener") })

	b.Publish("worklog_updated", nil)
	b.Publish("worklog_updated", nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if metric.GetCounter() != nil {
				values[f.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), values["test_bus_events_total"])
	assert.Equal(t, float64(4), values["test_bus_listener_failures_total"])
}

func TestEnvelope_ReservedKeysWin(t *testing.T) {
	data, err := Envelope("real", map[string]any{"type": "fake", "ts": "never", "n": 1}, time.UnixMilli(42))
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "real", env["type"])
	assert.Equal(t, float64(42), env["ts"])
	assert.Equal(t, float64(1), env["n"])
}

func TestEnvelope_UnencodablePayload(t *testing.T) {
	_, err := Envelope("x", map[string]any{"fn": func() {}}, time.Now())
	assert.Error(t, err)
}

func TestBus_EventCounterPerType(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := newTestBus()
	b.SetMetrics(metrics.New("hub", reg))

	b.Publish("a", nil)
	b.Publish("b", nil)
	b.Publish("a", nil)

	n, err := testutil.GatherAndCount(reg, "hub_bus_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
