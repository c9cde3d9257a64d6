package page

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chillbot-io/openlabels-go/model"
)

// TestResults tests the cursor-paginated results endpoint.
func TestResults(t *testing.T) {
	t.Run("basic request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/results" {
				t.Errorf("path = %q, want %q", r.URL.Path, "/api/results")
			}
			if r.URL.Query().Get("page_size") != "50" {
				t.Errorf("page_size = %q, want %q", r.URL.Query().Get("page_size"), "50")
			}
			json.NewEncoder(w).Encode(CursorPage[model.ScanResult]{
				Items: []model.ScanResult{
					{ID: uuid.New(), FilePath: "/srv/a.docx", RiskTier: "high"},
					{ID: uuid.New(), FilePath: "/srv/b.xlsx", RiskTier: "low"},
				},
				NextCursor: "c2",
				HasNext:    true,
				PageSize:   50,
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		pg, err := c.Results(context.Background(), ResultsOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pg.Items) != 2 {
			t.Errorf("len(Items) = %d, want 2", len(pg.Items))
		}
		if pg.Items[0].FilePath != "/srv/a.docx" {
			t.Errorf("Items[0].FilePath = %q", pg.Items[0].FilePath)
		}
		if pg.NextCursor != "c2" || !pg.HasNext {
			t.Errorf("cursor state = %q/%v", pg.NextCursor, pg.HasNext)
		}
	})

	t.Run("with filters and cursor", func(t *testing.T) {
		scanID := uuid.New()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("scan_id") != scanID.String() {
				t.Errorf("scan_id = %q, want %q", q.Get("scan_id"), scanID)
			}
			if q.Get("risk_tier") != "critical" {
				t.Errorf("risk_tier = %q, want critical", q.Get("risk_tier"))
			}
			if q.Get("search") != "payroll" {
				t.Errorf("search = %q, want payroll", q.Get("search"))
			}
			if q.Get("cursor") != "abc123" {
				t.Errorf("cursor = %q, want abc123", q.Get("cursor"))
			}
			if q.Get("page_size") != "10" {
				t.Errorf("page_size = %q, want 10", q.Get("page_size"))
			}
			json.NewEncoder(w).Encode(CursorPage[model.ScanResult]{})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Results(context.Background(), ResultsOptions{
			ScanID:   scanID,
			RiskTier: "critical",
			Search:   "payroll",
			Cursor:   "abc123",
			PageSize: 10,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestAccessEvents tests the access event endpoint.
func TestAccessEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/events")
		}
		if r.URL.Query().Get("action") != "delete" {
			t.Errorf("action = %q, want delete", r.URL.Query().Get("action"))
		}
		json.NewEncoder(w).Encode(CursorPage[model.AccessEvent]{
			Items: []model.AccessEvent{
				{ID: uuid.New(), FilePath: "/srv/gone.pdf", Action: "delete", EventTime: time.Now().UTC()},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	pg, err := c.AccessEvents(context.Background(), AccessEventsOptions{Action: "delete"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pg.Items) != 1 || pg.Items[0].Action != "delete" {
		t.Errorf("Items = %+v", pg.Items)
	}
}

// TestJobs tests the offset-paginated jobs endpoint.
func TestJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scans" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/scans")
		}
		q := r.URL.Query()
		if q.Get("status") != "running" {
			t.Errorf("status = %q, want running", q.Get("status"))
		}
		if q.Get("page") != "2" {
			t.Errorf("page = %q, want 2", q.Get("page"))
		}
		json.NewEncoder(w).Encode(OffsetPage[model.ScanJob]{
			Items:       []model.ScanJob{{ID: uuid.New(), Status: "running"}},
			Total:       11,
			Page:        2,
			PageSize:    50,
			TotalPages:  3,
			HasNext:     true,
			HasPrevious: true,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	pg, err := c.Jobs(context.Background(), JobsOptions{Status: "running", Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pg.Total != 11 || pg.TotalPages != 3 || !pg.HasPrevious {
		t.Errorf("page = %+v", pg)
	}
}

// TestJob tests fetching a single job.
func TestJob(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		id := uuid.New()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/scans/"+id.String() {
				t.Errorf("path = %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(model.ScanJob{ID: id, Name: "weekly", Status: "completed"})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		job, err := c.Job(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.ID != id || job.Name != "weekly" {
			t.Errorf("job = %+v", job)
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "scan not found"})
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(0, time.Millisecond))
		_, err := c.Job(context.Background(), uuid.New())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError in wrapped error, got %T: %v", err, err)
		}
		if apiErr.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
		}
	})
}

// TestStatsEndpoints tests the singleton partitions.
func TestStatsEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/scans/queue/stats":
			json.NewEncoder(w).Encode(model.QueueStats{Pending: 3, Running: 1, Completed: 40, Failed: 2})
		case "/api/health":
			json.NewEncoder(w).Encode(map[string]any{
				"components": []model.ComponentHealth{
					{Component: "scanner", Status: "ok"},
					{Component: "indexer", Status: "degraded"},
				},
			})
		case "/api/stats/dashboard":
			json.NewEncoder(w).Encode(model.DashboardStats{TotalFiles: 1000, FlaggedFiles: 70, CriticalFiles: 4, ActiveScans: 1})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL)

	qs, err := c.QueueStats(context.Background())
	if err != nil {
		t.Fatalf("QueueStats: %v", err)
	}
	if qs.Pending != 3 || qs.Failed != 2 {
		t.Errorf("queue stats = %+v", qs)
	}

	hc, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if len(hc) != 2 || hc[1].Status != "degraded" {
		t.Errorf("health = %+v", hc)
	}

	ds, err := c.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if ds.TotalFiles != 1000 || ds.ActiveScans != 1 {
		t.Errorf("dashboard stats = %+v", ds)
	}
}
