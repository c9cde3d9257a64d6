package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chillbot-io/openlabels-go/metrics"
)

// State is the push channel connection state.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Handler receives a decoded push event.
type Handler func(Event)

// ManagerConfig configures the session push channel.
type ManagerConfig struct {
	URL                string        // WebSocket URL (e.g., wss://host/ws/events)
	ReconnectBaseDelay time.Duration // First reconnect delay after a close
	ReconnectMaxDelay  time.Duration // Delay ceiling
	HandshakeTimeout   time.Duration // Dial handshake timeout
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		HandshakeTimeout:   10 * time.Second,
	}
}

// subscription identifies one registered handler so Unsubscribe removes
// exactly this one, leaving other handlers for the same type alone.
type subscription struct {
	fn Handler
}

// Manager owns the session's single push connection. Consumers share
// one instance with an explicit Connect/Disconnect lifecycle rather
// than each creating their own.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger
	dialer *websocket.Dialer

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
	gen   int // connection generation; retiring it detaches close handling
	retry *backoff
	timer *time.Timer

	subsMu sync.Mutex
	subs   map[Type][]*subscription
}

// NewManager creates a push channel manager. No connection is opened
// until Connect; subscriptions may be registered beforehand.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = DefaultManagerConfig().ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = DefaultManagerConfig().ReconnectMaxDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultManagerConfig().HandshakeTimeout
	}

	return &Manager{
		cfg:    cfg,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		retry:  newBackoff(cfg.ReconnectBaseDelay, cfg.ReconnectMaxDelay),
		subs:   make(map[Type][]*subscription),
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens the push connection. Idempotent: a no-op while already
// Open or Connecting. A prior socket lingering in a transitional state
// is force-closed with its close handling detached first, so it cannot
// trigger a spurious reconnect.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state == StateOpen || m.state == StateConnecting {
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		m.gen++ // detach the old socket's close handling
		m.conn.Close()
		m.conn = nil
	}
	m.state = StateConnecting
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	go m.dial(gen)
}

// Disconnect cancels any pending reconnect, closes the socket, and
// clears state to Closed. No reconnect attempt can occur afterwards
// until Connect is called again.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++ // retire the read loop's close handling and in-flight dials
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.state = StateClosed
	m.retry.Reset()
	m.mu.Unlock()

	metrics.ChannelConnected.Set(0)
	m.logger.Debug("push channel disconnected")
}

// Subscribe registers a handler for one event type and returns a
// function that removes exactly this handler. Handlers for a type run
// synchronously in registration order.
func (m *Manager) Subscribe(t Type, fn Handler) (unsubscribe func()) {
	s := &subscription{fn: fn}

	m.subsMu.Lock()
	m.subs[t] = append(m.subs[t], s)
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			list := m.subs[t]
			for i, cur := range list {
				if cur == s {
					// Copy-on-remove: an in-progress dispatch may be
					// iterating a snapshot of the old slice.
					next := make([]*subscription, 0, len(list)-1)
					next = append(next, list[:i]...)
					next = append(next, list[i+1:]...)
					m.subs[t] = next
					break
				}
			}
		})
	}
}

// dial attempts the websocket handshake for generation gen.
func (m *Manager) dial(gen int) {
	conn, _, err := m.dialer.Dial(m.cfg.URL, nil)

	m.mu.Lock()
	if gen != m.gen {
		// Detached by Disconnect or a newer Connect while dialing.
		m.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		m.state = StateClosed
		m.conn = nil
		delay := m.retry.Next()
		m.scheduleReconnectLocked(gen, delay)
		m.mu.Unlock()

		metrics.ChannelConnected.Set(0)
		m.logger.Warn("push channel connect failed",
			"url", m.cfg.URL,
			"error", err,
			"retry_in", delay,
		)
		m.dispatch(ConnectionChange{Connected: false})
		return
	}

	m.conn = conn
	m.state = StateOpen
	m.retry.Reset()
	m.mu.Unlock()

	metrics.ChannelConnected.Set(1)
	m.logger.Debug("push channel connected", "url", m.cfg.URL)

	go m.readLoop(conn, gen)
	m.dispatch(ConnectionChange{Connected: true})
}

// readLoop reads frames until the socket errors or closes.
func (m *Manager) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}
		m.handleMessage(raw)
	}
}

// handleClose runs when the current socket drops: transition to Closed,
// announce connectivity loss, and schedule exactly one reconnect after
// the current backoff delay.
func (m *Manager) handleClose(gen int, err error) {
	m.mu.Lock()
	if gen != m.gen {
		// This socket was already detached; its close is not ours.
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.state = StateClosed
	delay := m.retry.Next()
	m.scheduleReconnectLocked(gen, delay)
	m.mu.Unlock()

	metrics.ChannelConnected.Set(0)
	m.logger.Warn("push channel closed",
		"error", err,
		"retry_in", delay,
	)
	m.dispatch(ConnectionChange{Connected: false})
}

// scheduleReconnectLocked arms the reconnect timer. Caller holds m.mu.
// The attempt is counted only when the timer fires and survives the
// generation check, so a Disconnect-cancelled attempt never registers.
func (m *Manager) scheduleReconnectLocked(gen int, delay time.Duration) {
	m.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		if gen != m.gen || m.state != StateClosed {
			m.mu.Unlock()
			return
		}
		m.state = StateConnecting
		m.gen++
		next := m.gen
		m.mu.Unlock()

		metrics.ReconnectsTotal.Inc()
		m.dial(next)
	})
}

// handleMessage decodes one wire envelope and dispatches it. Malformed
// payloads and unrecognized tags are dropped without reaching any
// subscriber.
func (m *Manager) handleMessage(raw []byte) {
	ev, err := Decode(raw)
	if err != nil {
		metrics.EventsDiscardedTotal.WithLabelValues("malformed").Inc()
		m.logger.Debug("dropping malformed envelope", "error", err)
		return
	}
	if u, ok := ev.(Unknown); ok {
		metrics.EventsDiscardedTotal.WithLabelValues("unknown_type").Inc()
		m.logger.Debug("dropping unrecognized event", "type", u.Tag)
		return
	}
	m.dispatch(ev)
}

// dispatch delivers an event to every handler registered for its type,
// synchronously, in registration order. It iterates a snapshot so
// handlers may subscribe or unsubscribe during dispatch.
func (m *Manager) dispatch(ev Event) {
	t := ev.EventType()

	m.subsMu.Lock()
	list := m.subs[t]
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)
	m.subsMu.Unlock()

	metrics.EventsDispatchedTotal.WithLabelValues(string(t)).Inc()
	for _, s := range snapshot {
		m.invoke(s, ev)
	}
}

// invoke isolates a panicking handler so its siblings still run.
func (m *Manager) invoke(s *subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event handler panicked",
				"type", ev.EventType(),
				"panic", r,
			)
		}
	}()
	s.fn(ev)
}
