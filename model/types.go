package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanJob represents a scan job as returned by the jobs endpoints.
type ScanJob struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	TargetPath string     `json:"target_path"`
	Status     string     `json:"status"` // queued, running, completed, failed, cancelled

	// Progress fields. These are the only fields a scan_progress
	// event is allowed to touch.
	FilesScanned    int     `json:"files_scanned"`
	TotalFiles      int     `json:"total_files"`
	PercentComplete float64 `json:"percent_complete"`
	FindingsCount   int     `json:"findings_count"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ScanResult is a single file's scan outcome.
type ScanResult struct {
	ID           uuid.UUID      `json:"id"`
	ScanID       uuid.UUID      `json:"scan_id"`
	FilePath     string         `json:"file_path"`
	RiskScore    int            `json:"risk_score"`
	RiskTier     string         `json:"risk_tier"` // low, medium, high, critical
	EntityCounts map[string]int `json:"entity_counts"`
	Labels       []string       `json:"labels,omitempty"`
	ScannedAt    time.Time      `json:"scanned_at"`
}

// FileResult is the incremental per-file record pushed on a scan's
// dedicated stream while the scan is running.
type FileResult struct {
	FilePath     string         `json:"file_path"`
	RiskScore    int            `json:"risk_score"`
	RiskTier     string         `json:"risk_tier"`
	EntityCounts map[string]int `json:"entity_counts"`
}

// AccessEvent records a single file access observed by monitoring.
type AccessEvent struct {
	ID        uuid.UUID `json:"id"`
	FilePath  string    `json:"file_path"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"` // read, write, delete, rename
	EventTime time.Time `json:"event_time"`
}

// RemediationAction is a quarantine/restrict/label action and its outcome.
type RemediationAction struct {
	ID          uuid.UUID  `json:"id"`
	ActionType  string     `json:"action_type"` // quarantine, restrict, label
	Status      string     `json:"status"`      // pending, completed, failed
	FilePath    string     `json:"file_path"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QueueStats is the job-queue statistics partition.
type QueueStats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// ComponentHealth is one component's entry in the health partition.
type ComponentHealth struct {
	Component string    `json:"component"`
	Status    string    `json:"status"` // ok, degraded, down
	CheckedAt time.Time `json:"checked_at"`
}

// DashboardStats is the aggregate statistics partition invalidated when
// a scan finishes.
type DashboardStats struct {
	TotalFiles    int `json:"total_files"`
	FlaggedFiles  int `json:"flagged_files"`
	CriticalFiles int `json:"critical_files"`
	ActiveScans   int `json:"active_scans"`
}
