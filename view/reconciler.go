package view

import (
	"sync"

	"github.com/chillbot-io/openlabels-go/buffer"
	"github.com/chillbot-io/openlabels-go/model"
)

// Reconciler combines a bounded live buffer with historical pages
// fetched on demand. Any filter or scope change drops both sides, since
// the data they hold was collected under the old scope.
type Reconciler[T any] struct {
	identity func(T) string

	mu    sync.Mutex
	match func(T) bool
	live  *buffer.Ring[T]
	pages [][]T
	cap   int
}

// NewReconciler creates a reconciler whose live side holds at most
// capacity items. identity must return a stable id for an item; two
// items are the same exactly when their ids are equal.
func NewReconciler[T any](capacity int, identity func(T) string) *Reconciler[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Reconciler[T]{
		identity: identity,
		live:     buffer.NewRing[T](capacity),
		cap:      capacity,
	}
}

// PushLive records one item arriving on the push channel.
func (r *Reconciler[T]) PushLive(item T) {
	r.mu.Lock()
	ring := r.live
	r.mu.Unlock()
	ring.Push(item)
}

// AddPage appends one pulled page. Pages contribute to the view in the
// order they were fetched.
func (r *Reconciler[T]) AddPage(items []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page := make([]T, len(items))
	copy(page, items)
	r.pages = append(r.pages, page)
}

// SetFilter installs the live-side filter and resets both sides: items
// gathered under the previous filter no longer belong to the view. A
// nil match admits everything.
func (r *Reconciler[T]) SetFilter(match func(T) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match = match
	r.live = buffer.NewRing[T](r.cap)
	r.pages = nil
}

// Reset drops both sides without touching the filter, for scope changes
// that keep the filter semantics (a new scan id, say).
func (r *Reconciler[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = buffer.NewRing[T](r.cap)
	r.pages = nil
}

// View returns the reconciled sequence: live items absent from the
// historical pages and matching the filter, newest first, followed by
// the historical items in fetch order. No id appears twice.
func (r *Reconciler[T]) View() []T {
	r.mu.Lock()
	match := r.match
	ring := r.live
	pages := r.pages
	r.mu.Unlock()

	historical := make(map[string]struct{})
	total := 0
	for _, page := range pages {
		total += len(page)
		for _, item := range page {
			historical[r.identity(item)] = struct{}{}
		}
	}

	liveItems := ring.Items()
	out := make([]T, 0, len(liveItems)+total)
	seen := make(map[string]struct{}, len(liveItems)+total)

	for _, item := range liveItems {
		if match != nil && !match(item) {
			continue
		}
		id := r.identity(item)
		if _, dup := historical[id]; dup {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}

	for _, page := range pages {
		for _, item := range page {
			id := r.identity(item)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, item)
		}
	}

	return out
}

// NewResultView returns a reconciler over scan results, identified by
// their server-assigned id.
func NewResultView(capacity int) *Reconciler[model.ScanResult] {
	return NewReconciler(capacity, func(r model.ScanResult) string {
		return r.ID.String()
	})
}

// NewAccessEventView returns a reconciler over file access events.
func NewAccessEventView(capacity int) *Reconciler[model.AccessEvent] {
	return NewReconciler(capacity, func(e model.AccessEvent) string {
		return e.ID.String()
	})
}
