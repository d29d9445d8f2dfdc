package bus

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexcrew/internal/logger"
)

func TestHub_AddRemove(t *testing.T) {
	h := NewHub(logger.Discard())

	remove := h.Add(&fakeConn{open: true})
	h.Add(&fakeConn{open: true})
	assert.Equal(t, 2, h.Len())
	assert.Len(t, h.Connections(), 2)

	remove()
	assert.Equal(t, 1, h.Len())
}

func TestHub_StreamsEnvelopes(t *testing.T) {
	h := NewHub(logger.Discard())
	b := newTestBus()
	b.SetSink(h)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)

	b.Publish("heartbeat_started", map[string]any{"jobId": "daily"})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	assert.Contains(t, line, `"type":"heartbeat_started"`)
	assert.Contains(t, line, `"jobId":"daily"`)

	cancel()
	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStreamConn_ClosedRejectsSend(t *testing.T) {
	rec := httptest.NewRecorder()
	c := newStreamConn(rec, rec)

	require.NoError(t, c.Send([]byte(`{"type":"x"}`)))
	assert.True(t, c.Open())

	c.close()
	assert.False(t, c.Open())
	assert.ErrorIs(t, c.Send([]byte("{}")), ErrConnClosed)
	assert.Equal(t, "data: {\"type\":\"x\"}\n\n", rec.Body.String())
}
