package events

import (
	"testing"

	"github.com/google/uuid"
)

func TestDecode_ScanProgress(t *testing.T) {
	id := uuid.New()
	raw := []byte(`{"type":"scan_progress","data":{"scan_id":"` + id.String() +
		`","status":"running","progress":{"files_scanned":10,"total_files":40,"percent_complete":25.0,"findings_count":3}}}`)

	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	sp, ok := ev.(ScanProgress)
	if !ok {
		t.Fatalf("event type = %T, want ScanProgress", ev)
	}
	if sp.ScanID != id {
		t.Errorf("ScanID = %s, want %s", sp.ScanID, id)
	}
	if sp.Status != "running" {
		t.Errorf("Status = %q, want running", sp.Status)
	}
	if sp.Progress.FilesScanned != 10 || sp.Progress.TotalFiles != 40 {
		t.Errorf("Progress = %+v, want 10/40", sp.Progress)
	}
	if sp.Progress.PercentComplete != 25.0 {
		t.Errorf("PercentComplete = %v, want 25.0", sp.Progress.PercentComplete)
	}
}

func TestDecode_FileAccess(t *testing.T) {
	raw := []byte(`{"type":"file_access","data":{"file_path":"/srv/share/q3.xlsx","user_name":"jdoe","action":"read","event_time":"2025-06-01T12:00:00Z"}}`)

	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	fa, ok := ev.(FileAccess)
	if !ok {
		t.Fatalf("event type = %T, want FileAccess", ev)
	}
	if fa.FilePath != "/srv/share/q3.xlsx" {
		t.Errorf("FilePath = %q", fa.FilePath)
	}
	if fa.Action != "read" {
		t.Errorf("Action = %q, want read", fa.Action)
	}
	if fa.EventTime.IsZero() {
		t.Error("EventTime not parsed")
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	raw := []byte(`{"type":"market_lifecycle","data":{"anything":1}}`)

	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	u, ok := ev.(Unknown)
	if !ok {
		t.Fatalf("event type = %T, want Unknown", ev)
	}
	if u.Tag != "market_lifecycle" {
		t.Errorf("Tag = %q", u.Tag)
	}
}

func TestDecode_ConnectionTagIsNotWire(t *testing.T) {
	// The _connection pseudo-type is local-only; a wire envelope
	// carrying it decodes as Unknown and is discarded upstream.
	raw := []byte(`{"type":"_connection","data":{"connected":true}}`)

	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := ev.(Unknown); !ok {
		t.Fatalf("event type = %T, want Unknown", ev)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDecode_BadPayload(t *testing.T) {
	// Recognized tag but payload that does not parse.
	raw := []byte(`{"type":"scan_failed","data":"not-an-object"}`)
	if _, err := Decode(raw); err == nil {
		t.Error("expected error for unparseable payload")
	}
}

func TestDecode_MissingData(t *testing.T) {
	raw := []byte(`{"type":"scan_completed"}`)
	if _, err := Decode(raw); err == nil {
		t.Error("expected error for missing data")
	}
}
