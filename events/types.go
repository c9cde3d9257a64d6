package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type identifies a push event kind.
type Type string

// Wire event types recognized on the session channel. Any other tag is
// discarded before dispatch.
const (
	TypeScanProgress         Type = "scan_progress"
	TypeScanCompleted        Type = "scan_completed"
	TypeScanFailed           Type = "scan_failed"
	TypeLabelApplied         Type = "label_applied"
	TypeRemediationCompleted Type = "remediation_completed"
	TypeJobStatus            Type = "job_status"
	TypeHealthUpdate         Type = "health_update"
	TypeFileAccess           Type = "file_access"

	// TypeConnection is a reserved local-only pseudo-type used to
	// signal connectivity changes. It is never sent over the wire; a
	// wire envelope carrying this tag is discarded like any other
	// unrecognized tag.
	TypeConnection Type = "_connection"
)

// Event is the closed union of push event payloads.
type Event interface {
	EventType() Type
}

// envelope is the outer wire message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ScanProgress carries incremental progress for a running scan.
type ScanProgress struct {
	ScanID   uuid.UUID `json:"scan_id"`
	Status   string    `json:"status"`
	Progress Progress  `json:"progress"`
}

// Progress holds the progress-related fields of a scan job. These are
// the only fields a progress patch may touch.
type Progress struct {
	FilesScanned    int     `json:"files_scanned"`
	TotalFiles      int     `json:"total_files"`
	PercentComplete float64 `json:"percent_complete"`
	FindingsCount   int     `json:"findings_count"`
}

// ScanCompleted announces a finished scan.
type ScanCompleted struct {
	ScanID  uuid.UUID   `json:"scan_id"`
	Status  string      `json:"status"`
	Summary ScanSummary `json:"summary"`
}

// ScanSummary is the completion summary attached to scan_completed.
type ScanSummary struct {
	TotalFiles   int `json:"total_files"`
	FlaggedFiles int `json:"flagged_files"`
	HighRisk     int `json:"high_risk"`
}

// ScanFailed announces a failed scan.
type ScanFailed struct {
	ScanID uuid.UUID `json:"scan_id"`
	Error  string    `json:"error"`
}

// LabelApplied announces a sensitivity label applied to a result.
type LabelApplied struct {
	ResultID  uuid.UUID `json:"result_id"`
	LabelName string    `json:"label_name"`
}

// RemediationCompleted announces a finished remediation action.
type RemediationCompleted struct {
	ActionID   uuid.UUID `json:"action_id"`
	ActionType string    `json:"action_type"`
	Status     string    `json:"status"`
}

// JobStatus announces a queue state transition for a job.
type JobStatus struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// HealthUpdate announces a component health change.
type HealthUpdate struct {
	Component string `json:"component"`
	Status    string `json:"status"`
}

// FileAccess reports a monitored file access.
type FileAccess struct {
	FilePath  string    `json:"file_path"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	EventTime time.Time `json:"event_time"`
}

// ConnectionChange is the payload of the local-only TypeConnection
// pseudo-event.
type ConnectionChange struct {
	Connected bool
}

// Unknown absorbs wire envelopes whose tag is outside the recognized
// set. It never reaches subscribers; Decode returns it so callers can
// count discards.
type Unknown struct {
	Tag  string
	Data json.RawMessage
}

func (ScanProgress) EventType() Type         { return TypeScanProgress }
func (ScanCompleted) EventType() Type        { return TypeScanCompleted }
func (ScanFailed) EventType() Type           { return TypeScanFailed }
func (LabelApplied) EventType() Type         { return TypeLabelApplied }
func (RemediationCompleted) EventType() Type { return TypeRemediationCompleted }
func (JobStatus) EventType() Type            { return TypeJobStatus }
func (HealthUpdate) EventType() Type         { return TypeHealthUpdate }
func (FileAccess) EventType() Type           { return TypeFileAccess }
func (ConnectionChange) EventType() Type     { return TypeConnection }
func (u Unknown) EventType() Type            { return Type(u.Tag) }

// Decode parses a wire envelope into its typed event. A tag outside
// the recognized set yields Unknown with a nil error; a payload that
// fails to parse yields a non-nil error. TypeConnection is local-only
// and therefore decodes as Unknown.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch Type(env.Type) {
	case TypeScanProgress:
		var e ScanProgress
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeScanCompleted:
		var e ScanCompleted
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeScanFailed:
		var e ScanFailed
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeLabelApplied:
		var e LabelApplied
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeRemediationCompleted:
		var e RemediationCompleted
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeJobStatus:
		var e JobStatus
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeHealthUpdate:
		var e HealthUpdate
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case TypeFileAccess:
		var e FileAccess
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return Unknown{Tag: env.Type, Data: env.Data}, nil
	}
}
