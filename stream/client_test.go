package stream

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// scanServer upgrades /ws/scans/{id} requests and records which scan
// each accepted connection was opened for.
type scanServer struct {
	srv      *httptest.Server
	upgrades atomic.Int64

	mu    sync.Mutex
	conns map[string]*websocket.Conn // scan id -> latest connection
}

func newScanServer(t *testing.T) (*scanServer, string) {
	t.Helper()
	s := &scanServer{conns: make(map[string]*websocket.Conn)}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/scans/") {
			http.NotFound(w, r)
			return
		}
		scanID := strings.TrimPrefix(r.URL.Path, "/ws/scans/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.upgrades.Add(1)
		s.mu.Lock()
		s.conns[scanID] = conn
		s.mu.Unlock()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(func() {
		s.dropAll()
		s.srv.Close()
	})
	return s, "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *scanServer) send(t *testing.T, scanID uuid.UUID, payload string) {
	t.Helper()
	s.mu.Lock()
	conn := s.conns[scanID.String()]
	s.mu.Unlock()
	if conn == nil {
		t.Fatalf("no server-side connection for scan %s", scanID)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("server write failed: %v", err)
	}
}

func (s *scanServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = make(map[string]*websocket.Conn)
}

func fileResult(path string, score int) string {
	return fmt.Sprintf(`{"type":"file_result","file_path":%q,"risk_score":%d,"risk_tier":"high","entity_counts":{"ssn":2}}`, path, score)
}

// awaitLen polls until the buffer holds want records or the deadline
// passes.
func awaitLen(t *testing.T, c *Client, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Len() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("buffer length = %d, want %d", c.Len(), want)
}

func TestClient_BuffersNewestFirst(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url}, nil)
	defer c.Close()

	scanID := uuid.New()
	if err := c.Watch(scanID); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	s.send(t, scanID, fileResult("/a", 10))
	s.send(t, scanID, fileResult("/b", 20))
	s.send(t, scanID, fileResult("/c", 30))
	awaitLen(t, c, 3)

	got := c.Results()
	if got[0].FilePath != "/c" || got[1].FilePath != "/b" || got[2].FilePath != "/a" {
		t.Errorf("order = [%s %s %s], want [/c /b /a]", got[0].FilePath, got[1].FilePath, got[2].FilePath)
	}
	if got[0].RiskScore != 30 || got[0].RiskTier != "high" {
		t.Errorf("record = %+v", got[0])
	}
	if got[0].EntityCounts["ssn"] != 2 {
		t.Errorf("entity counts = %v", got[0].EntityCounts)
	}
}

func TestClient_BufferEvictsOldestAtCapacity(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url, BufferCapacity: 200}, nil)
	defer c.Close()

	scanID := uuid.New()
	if err := c.Watch(scanID); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	for i := 1; i <= 250; i++ {
		s.send(t, scanID, fileResult(fmt.Sprintf("/f/%d", i), i))
	}
	awaitLen(t, c, 200)

	got := c.Results()
	if len(got) != 200 {
		t.Fatalf("len = %d, want 200", len(got))
	}
	// Items 51..250 survive, newest first.
	for i, r := range got {
		want := 250 - i
		if r.RiskScore != want {
			t.Fatalf("item %d: score = %d, want %d", i, r.RiskScore, want)
		}
	}
}

func TestClient_IgnoresOtherMessageShapes(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url}, nil)
	defer c.Close()

	scanID := uuid.New()
	if err := c.Watch(scanID); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	s.send(t, scanID, `{"type":"heartbeat"}`)
	s.send(t, scanID, `{"type":"scan_progress","files_scanned":5}`)
	s.send(t, scanID, `{broken`)
	s.send(t, scanID, fileResult("/only", 1))
	awaitLen(t, c, 1)

	if got := c.Results(); got[0].FilePath != "/only" {
		t.Errorf("buffered = %+v", got)
	}
}

func TestClient_WatchSwitchesScanAndDiscardsBuffer(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url}, nil)
	defer c.Close()

	first := uuid.New()
	if err := c.Watch(first); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	s.send(t, first, fileResult("/old", 1))
	awaitLen(t, c, 1)

	second := uuid.New()
	if err := c.Watch(second); err != nil {
		t.Fatalf("second Watch failed: %v", err)
	}

	if got := c.Len(); got != 0 {
		t.Errorf("buffer length after switch = %d, want 0", got)
	}
	if id, ok := c.ScanID(); !ok || id != second {
		t.Errorf("scan id = %v, want %s", id, second)
	}
	if got := s.upgrades.Load(); got != 2 {
		t.Errorf("upgrades = %d, want 2", got)
	}

	s.send(t, second, fileResult("/new", 2))
	awaitLen(t, c, 1)
	if got := c.Results(); got[0].FilePath != "/new" {
		t.Errorf("buffered = %+v", got)
	}
}

func TestClient_NoReconnectAfterServerDrop(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url}, nil)
	defer c.Close()

	scanID := uuid.New()
	if err := c.Watch(scanID); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	s.send(t, scanID, fileResult("/kept", 7))
	awaitLen(t, c, 1)

	s.dropAll()
	deadline := time.Now().Add(time.Second)
	for c.Active() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Active() {
		t.Fatal("stream still active after server drop")
	}

	time.Sleep(100 * time.Millisecond)
	if got := s.upgrades.Load(); got != 1 {
		t.Errorf("upgrades = %d after drop, want 1 (no reconnect)", got)
	}
	// The buffer survives a passive close; only switching scans clears it.
	if got := c.Results(); len(got) != 1 || got[0].FilePath != "/kept" {
		t.Errorf("buffered after drop = %+v", got)
	}
}

func TestClient_ClearClosesAndEmpties(t *testing.T) {
	s, url := newScanServer(t)
	c := NewClient(Config{BaseURL: url}, nil)

	scanID := uuid.New()
	if err := c.Watch(scanID); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	s.send(t, scanID, fileResult("/x", 1))
	awaitLen(t, c, 1)

	c.Clear()
	if c.Active() {
		t.Error("stream still active after Clear")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("buffer length after Clear = %d, want 0", got)
	}
	if _, ok := c.ScanID(); ok {
		t.Error("scan id still set after Clear")
	}
}

func TestClient_WatchDialFailure(t *testing.T) {
	c := NewClient(Config{BaseURL: "ws://127.0.0.1:1", HandshakeTimeout: 200 * time.Millisecond}, nil)
	if err := c.Watch(uuid.New()); err == nil {
		t.Fatal("expected dial error")
	}
	if c.Active() {
		t.Error("client active after failed dial")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("buffer length = %d, want 0", got)
	}
	if id, ok := c.ScanID(); ok {
		t.Errorf("scan id = %s after failed dial, want none", id)
	}
}
