package cache

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chillbot-io/openlabels-go/events"
	"github.com/chillbot-io/openlabels-go/model"
)

// Bus is the slice of the push channel the synchronizer needs.
type Bus interface {
	Subscribe(t events.Type, fn events.Handler) (unsubscribe func())
}

// Notification is surfaced to the consumer when a scan or remediation
// finishes. Delivery is synchronous on the dispatch path.
type Notification struct {
	Kind    events.Type
	Message string
	Event   events.Event
}

// NotifyFunc receives user-facing notifications.
type NotifyFunc func(Notification)

// Synchronizer subscribes to every push event type and applies the
// corresponding cache effect: progress events patch the cached job in
// place, everything else marks the affected partitions stale. It never
// fetches; staleness is resolved lazily by the next read.
type Synchronizer struct {
	store  *Store
	logger *slog.Logger
	notify NotifyFunc
	unsubs []func()
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithNotify sets the notification callback.
func WithNotify(fn NotifyFunc) SyncOption {
	return func(s *Synchronizer) {
		s.notify = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SyncOption {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// NewSynchronizer wires the store to the push channel. All
// subscriptions are registered immediately; Close removes them.
func NewSynchronizer(store *Store, bus Bus, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		store:  store,
		logger: slog.Default(),
		notify: func(Notification) {},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.unsubs = []func(){
		bus.Subscribe(events.TypeScanProgress, s.onEvent),
		bus.Subscribe(events.TypeScanCompleted, s.onEvent),
		bus.Subscribe(events.TypeScanFailed, s.onEvent),
		bus.Subscribe(events.TypeLabelApplied, s.onEvent),
		bus.Subscribe(events.TypeRemediationCompleted, s.onEvent),
		bus.Subscribe(events.TypeJobStatus, s.onEvent),
		bus.Subscribe(events.TypeHealthUpdate, s.onEvent),
	}
	return s
}

// Close removes every subscription the synchronizer registered. The
// store keeps its contents.
func (s *Synchronizer) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// onEvent routes one push event to its cache effects.
func (s *Synchronizer) onEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.ScanProgress:
		s.patchJobProgress(e)

	case events.ScanCompleted:
		s.invalidateScan(e.ScanID)
		s.notify(Notification{
			Kind:    events.TypeScanCompleted,
			Message: fmt.Sprintf("scan %s completed", e.ScanID),
			Event:   e,
		})

	case events.ScanFailed:
		s.invalidateScan(e.ScanID)
		s.notify(Notification{
			Kind:    events.TypeScanFailed,
			Message: fmt.Sprintf("scan %s failed: %s", e.ScanID, e.Error),
			Event:   e,
		})

	case events.LabelApplied:
		s.store.InvalidateCollection(CollectionResults)
		s.store.InvalidateCollection(CollectionLabels)

	case events.RemediationCompleted:
		s.store.InvalidateCollection(CollectionRemediation)
		s.notify(Notification{
			Kind:    events.TypeRemediationCompleted,
			Message: fmt.Sprintf("remediation %s %s", e.ActionType, e.Status),
			Event:   e,
		})

	case events.JobStatus:
		s.store.InvalidateCollection(CollectionQueueStats)

	case events.HealthUpdate:
		s.store.InvalidateCollection(CollectionHealth)

	default:
		s.logger.Debug("no cache effect for event", "type", ev.EventType())
	}
}

// invalidateScan marks everything a finished scan can affect: the jobs
// collection under every filter, the scan's own entry, and the
// dashboard aggregates.
func (s *Synchronizer) invalidateScan(scanID uuid.UUID) {
	s.store.InvalidateCollection(CollectionJobs)
	s.store.Invalidate(Key{Collection: CollectionJob, Filter: scanID.String()})
	s.store.InvalidateCollection(CollectionDashboard)
}

// patchJobProgress merges progress fields into the cached job wherever
// it is cached: its own entry and any jobs list containing it. Only the
// progress fields and status change, so a replayed event is a no-op.
func (s *Synchronizer) patchJobProgress(e events.ScanProgress) {
	s.store.Patch(Key{Collection: CollectionJob, Filter: e.ScanID.String()}, func(data any) (any, bool) {
		job, ok := data.(model.ScanJob)
		if !ok {
			return data, false
		}
		return mergeProgress(job, e), true
	})

	s.store.PatchCollection(CollectionJobs, func(data any) (any, bool) {
		jobs, ok := data.([]model.ScanJob)
		if !ok {
			return data, false
		}
		patched := false
		for i := range jobs {
			if jobs[i].ID != e.ScanID {
				continue
			}
			if !patched {
				// Readers may still hold the slice a fetch handed out;
				// never mutate their backing array in place.
				jobs = append([]model.ScanJob(nil), jobs...)
				patched = true
			}
			jobs[i] = mergeProgress(jobs[i], e)
		}
		return jobs, patched
	})
}

func mergeProgress(job model.ScanJob, e events.ScanProgress) model.ScanJob {
	job.Status = e.Status
	job.FilesScanned = e.Progress.FilesScanned
	job.TotalFiles = e.Progress.TotalFiles
	job.PercentComplete = e.Progress.PercentComplete
	job.FindingsCount = e.Progress.FindingsCount
	return job
}
