package bus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/aatumaykin/nexcrew/internal/logger"
)

// Hub is a ConnectionSet of attached stream clients.
type Hub struct {
	mu     sync.Mutex
	conns  map[Conn]struct{}
	logger *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		conns:  make(map[Conn]struct{}),
		logger: log.Named("hub"),
	}
}

// Add attaches conn and returns a function that detaches it.
func (h *Hub) Add(conn Conn) (remove func()) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}
}

func (h *Hub) Connections() []Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}

// Len returns the number of attached connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeHTTP streams every envelope to the client as server-sent events until
// the request is cancelled.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	conn := newStreamConn(w, flusher)
	remove := h.Add(conn)
	defer remove()

	h.logger.Debug("stream client attached", logger.Field{Key: "remote", Value: r.RemoteAddr})
	<-r.Context().Done()
	conn.close()
	h.logger.Debug("stream client detached", logger.Field{Key: "remote", Value: r.RemoteAddr})
}

// streamConn writes envelopes to one SSE response.
type streamConn struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

func newStreamConn(w http.ResponseWriter, f http.Flusher) *streamConn {
	return &streamConn{w: w, flusher: f}
}

func (c *streamConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	c.flusher.Flush()
	return nil
}

func (c *streamConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *streamConn) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
