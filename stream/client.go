package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chillbot-io/openlabels-go/buffer"
	"github.com/chillbot-io/openlabels-go/metrics"
	"github.com/chillbot-io/openlabels-go/model"
)

// DefaultBufferCapacity bounds the live record buffer when the config
// does not say otherwise.
const DefaultBufferCapacity = 200

// Config configures a per-scan stream client.
type Config struct {
	BaseURL          string        // WebSocket base URL (e.g., ws://host); the scan path is appended
	BufferCapacity   int           // Max live records retained (default 200)
	HandshakeTimeout time.Duration // Dial handshake timeout
}

// record is the flat wire shape pushed on a scan's dedicated stream.
// Only file_result carries data; everything else (heartbeats, progress
// echoes) is ignored here because the session channel already covers it.
type record struct {
	Type         string         `json:"type"`
	FilePath     string         `json:"file_path"`
	RiskScore    int            `json:"risk_score"`
	RiskTier     string         `json:"risk_tier"`
	EntityCounts map[string]int `json:"entity_counts"`
}

// Client follows one scan's dedicated stream at a time. Unlike the
// session channel it never reconnects: the stream's lifetime is the
// scan's, and a dropped socket simply ends it. Switching scans closes
// the current socket immediately and discards everything buffered.
type Client struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer

	mu     sync.Mutex
	scanID uuid.UUID
	active bool
	conn   *websocket.Conn
	gen    int // stream generation; retiring it detaches the read loop
	buf    *buffer.Ring[model.FileResult]
}

// NewClient creates a stream client. No socket is opened until Watch.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = DefaultBufferCapacity
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		buf:    buffer.NewRing[model.FileResult](cfg.BufferCapacity),
	}
}

// Watch switches the client to the given scan: any previous socket is
// closed and its buffered records discarded before the new stream is
// dialed. A dial failure leaves the client idle with an empty buffer.
func (c *Client) Watch(scanID uuid.UUID) error {
	c.mu.Lock()
	c.teardownLocked()
	c.scanID = scanID
	c.buf = buffer.NewRing[model.FileResult](c.cfg.BufferCapacity)
	c.gen++
	gen := c.gen
	ring := c.buf
	c.mu.Unlock()

	url := fmt.Sprintf("%s/ws/scans/%s", c.cfg.BaseURL, scanID)
	conn, _, err := c.dialer.Dial(url, nil)
	if err != nil {
		c.mu.Lock()
		if gen == c.gen {
			// Nothing is watched after a failed dial.
			c.scanID = uuid.Nil
		}
		c.mu.Unlock()
		return fmt.Errorf("dialing scan stream: %w", err)
	}

	c.mu.Lock()
	if gen != c.gen {
		// A newer Watch or Clear won the race while we were dialing.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.active = true
	c.mu.Unlock()

	c.logger.Debug("scan stream opened", "scan_id", scanID)
	go c.readLoop(conn, gen, ring)
	return nil
}

// Clear detaches from the current scan: the socket is closed at once
// and the buffer is discarded. The client can Watch a new scan after.
func (c *Client) Clear() {
	c.mu.Lock()
	c.teardownLocked()
	c.scanID = uuid.Nil
	c.buf = buffer.NewRing[model.FileResult](c.cfg.BufferCapacity)
	c.mu.Unlock()
}

// Close is Clear; it exists so the client satisfies io.Closer-style
// shutdown paths.
func (c *Client) Close() error {
	c.Clear()
	return nil
}

// teardownLocked closes the socket and retires the read loop. Caller
// holds c.mu.
func (c *Client) teardownLocked() {
	c.gen++
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.active = false
}

// ScanID returns the scan currently watched, if any.
func (c *Client) ScanID() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanID, c.scanID != uuid.Nil
}

// Active reports whether the stream socket is currently open. The
// buffer outlives the socket: a finished scan's records stay readable
// until the caller switches scans.
func (c *Client) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Results returns the buffered records, newest first.
func (c *Client) Results() []model.FileResult {
	c.mu.Lock()
	ring := c.buf
	c.mu.Unlock()
	return ring.Items()
}

// Len returns the number of buffered records.
func (c *Client) Len() int {
	c.mu.Lock()
	ring := c.buf
	c.mu.Unlock()
	return ring.Len()
}

// readLoop buffers file_result records until the socket dies. It writes
// into the ring it was started with, so a stale loop racing a Watch can
// never contaminate the next scan's buffer.
func (c *Client) readLoop(conn *websocket.Conn, gen int, ring *buffer.Ring[model.FileResult]) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			c.logger.Debug("dropping malformed stream record", "error", err)
			continue
		}
		if rec.Type != "file_result" {
			continue
		}
		ring.Push(model.FileResult{
			FilePath:     rec.FilePath,
			RiskScore:    rec.RiskScore,
			RiskTier:     rec.RiskTier,
			EntityCounts: rec.EntityCounts,
		})
		metrics.StreamRecordsTotal.Inc()
	}
}

// handleClose marks the stream inactive when its socket drops. There is
// no reconnect: a closed scan stream stays closed.
func (c *Client) handleClose(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.active = false
	c.mu.Unlock()

	c.logger.Debug("scan stream closed", "error", err)
}
