package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/tracing"
)

const (
	writeWait      = 10 * time.Second
	outboxCapacity = 64
)

// Page receives cross-frame messages from the shell
type Page interface {
	ReceiveMessage(origin string, data []byte)
}

// Outbox yields messages the page posts to its parent
type Outbox interface {
	Subscribe(buffer int) (<-chan []byte, func())
}

// Session exposes the trusted origin of the bridge session and the ready
// event a newly attached shell receives
type Session interface {
	AllowedOrigin() string
	ReadyMessage() ([]byte, bool)
}

// Relay carries bridge traffic between the headless page and a real editor
// shell over a WebSocket. Only the trusted origin may connect.
type Relay struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	active sync.WaitGroup

	page    Page
	outbox  Outbox
	session Session
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// Option configures a Relay
type Option func(*Relay)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics enables connection and message counters
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

// WithTracer records one span per connection
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Relay) { r.tracer = t }
}

// NewRelay creates a relay
func NewRelay(page Page, outbox Outbox, session Session, opts ...Option) *Relay {
	r := &Relay{
		page:    page,
		outbox:  outbox,
		session: session,
		logger:  zap.NewNop(),
		conns:   make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleConnection upgrades the request and relays until either side closes
func (r *Relay) HandleConnection(c *gin.Context) {
	allowed := r.session.AllowedOrigin()
	if allowed == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bridge not initialized"})
		return
	}

	origin := c.GetHeader("Origin")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return origin == allowed },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.logger.Warn("Relay upgrade refused", zap.String("origin", origin), zap.Error(err))
		return
	}
	defer conn.Close()

	if !r.track(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		return
	}
	defer r.untrack(conn)

	id := uuid.NewString()
	log := r.logger.With(zap.String("conn_id", id))
	log.Info("Shell connected")

	if r.tracer != nil {
		span, _ := r.tracer.StartSpan(c.Request.Context(), "bridge.relay")
		span.SetTag("conn_id", id)
		defer func() {
			span.Finish()
			r.tracer.Submit(span)
		}()
	}

	r.metrics.IncWSConnections()
	defer r.metrics.DecWSConnections()

	// Subscribe first so nothing posted after ready is missed
	outbound, cancel := r.outbox.Subscribe(outboxCapacity)
	ready, _ := r.session.ReadyMessage()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.writeLoop(conn, ready, outbound, log)
	}()

	r.readLoop(conn, origin, log)

	cancel()
	wg.Wait()
	log.Info("Shell disconnected")
}

// Close disconnects every shell, refuses new ones and waits for the
// connection handlers to return
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	for conn := range r.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
	}
	r.mu.Unlock()

	r.active.Wait()
}

// Connections returns the number of attached shells
func (r *Relay) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Relay) track(conn *websocket.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.conns[conn] = struct{}{}
	r.active.Add(1)
	return true
}

func (r *Relay) untrack(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.conns, conn)
	r.mu.Unlock()
	r.active.Done()
}

func (r *Relay) readLoop(conn *websocket.Conn, origin string, log *zap.Logger) {
	conn.SetReadLimit(protocol.MaxMessageSize)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Relay read failed", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		r.metrics.RecordWSMessage("in")
		r.page.ReceiveMessage(origin, data)
	}
}

// writeLoop sends ready, then forwards page messages until the outbox
// closes. A write failure closes the connection, which ends the read loop.
func (r *Relay) writeLoop(conn *websocket.Conn, ready []byte, outbound <-chan []byte, log *zap.Logger) {
	if ready != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, ready); err != nil {
			log.Warn("Relay write failed", zap.Error(err))
			conn.Close()
			for range outbound {
			}
			return
		}
		r.metrics.RecordWSMessage("out")
	}

	for msg := range outbound {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warn("Relay write failed", zap.Error(err))
			conn.Close()
			for range outbound {
			}
			return
		}
		r.metrics.RecordWSMessage("out")
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
