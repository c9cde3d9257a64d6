package page

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/chillbot-io/openlabels-go/model"
)

// ResultsOptions filters the scan results collection.
type ResultsOptions struct {
	ScanID   uuid.UUID // zero value: all scans
	RiskTier string    // low, medium, high, critical
	Search   string    // substring match on file path
	Cursor   string
	PageSize int
}

// Query renders the options as request parameters. Pagers use this to
// derive a filter signature, so the rendering must be deterministic.
func (o ResultsOptions) Query() url.Values {
	query := url.Values{}
	if o.ScanID != uuid.Nil {
		query.Set("scan_id", o.ScanID.String())
	}
	if o.RiskTier != "" {
		query.Set("risk_tier", o.RiskTier)
	}
	if o.Search != "" {
		query.Set("search", o.Search)
	}
	return query
}

// Results fetches a page of scan results.
func (c *Client) Results(ctx context.Context, opts ResultsOptions) (*CursorPage[model.ScanResult], error) {
	query := opts.Query()
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	query.Set("page_size", strconv.Itoa(c.effectivePageSize(opts.PageSize)))

	var resp CursorPage[model.ScanResult]
	if err := c.get(ctx, "results", "/api/results", query, &resp); err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}

	return &resp, nil
}

// AccessEventsOptions filters the file access event collection.
type AccessEventsOptions struct {
	FilePath string
	UserName string
	Action   string // read, write, delete, rename
	Cursor   string
	PageSize int
}

// Query renders the options as request parameters.
func (o AccessEventsOptions) Query() url.Values {
	query := url.Values{}
	if o.FilePath != "" {
		query.Set("file_path", o.FilePath)
	}
	if o.UserName != "" {
		query.Set("user_name", o.UserName)
	}
	if o.Action != "" {
		query.Set("action", o.Action)
	}
	return query
}

// AccessEvents fetches a page of file access events.
func (c *Client) AccessEvents(ctx context.Context, opts AccessEventsOptions) (*CursorPage[model.AccessEvent], error) {
	query := opts.Query()
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	query.Set("page_size", strconv.Itoa(c.effectivePageSize(opts.PageSize)))

	var resp CursorPage[model.AccessEvent]
	if err := c.get(ctx, "access_events", "/api/events", query, &resp); err != nil {
		return nil, fmt.Errorf("get access events: %w", err)
	}

	return &resp, nil
}

// JobsOptions filters the scan jobs collection, which pages by offset.
type JobsOptions struct {
	Status   string // queued, running, completed, failed, cancelled
	Page     int    // 1-based; 0 means first page
	PageSize int
}

// Jobs fetches a page of scan jobs.
func (c *Client) Jobs(ctx context.Context, opts JobsOptions) (*OffsetPage[model.ScanJob], error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	query.Set("page_size", strconv.Itoa(c.effectivePageSize(opts.PageSize)))

	var resp OffsetPage[model.ScanJob]
	if err := c.get(ctx, "jobs", "/api/scans", query, &resp); err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}

	return &resp, nil
}

// Job fetches a single scan job by id.
func (c *Client) Job(ctx context.Context, id uuid.UUID) (*model.ScanJob, error) {
	var resp model.ScanJob
	if err := c.get(ctx, "job", "/api/scans/"+id.String(), nil, &resp); err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &resp, nil
}

// QueueStats fetches the job queue statistics partition.
func (c *Client) QueueStats(ctx context.Context) (*model.QueueStats, error) {
	var resp model.QueueStats
	if err := c.get(ctx, "queue_stats", "/api/scans/queue/stats", nil, &resp); err != nil {
		return nil, fmt.Errorf("get queue stats: %w", err)
	}
	return &resp, nil
}

// Health fetches every component's health entry.
func (c *Client) Health(ctx context.Context) ([]model.ComponentHealth, error) {
	var resp struct {
		Components []model.ComponentHealth `json:"components"`
	}
	if err := c.get(ctx, "health", "/api/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("get health: %w", err)
	}
	return resp.Components, nil
}

// DashboardStats fetches the aggregate statistics partition.
func (c *Client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var resp model.DashboardStats
	if err := c.get(ctx, "dashboard_stats", "/api/stats/dashboard", nil, &resp); err != nil {
		return nil, fmt.Errorf("get dashboard stats: %w", err)
	}
	return &resp, nil
}

func (c *Client) effectivePageSize(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.pageSize
}
