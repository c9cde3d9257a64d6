package cache

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/chillbot-io/openlabels-go/metrics"
)

// Collection names addressed by cache effects.
const (
	CollectionJobs        = "jobs"
	CollectionJob         = "job" // per-id entries; Filter is the scan id
	CollectionResults     = "results"
	CollectionLabels      = "labels"
	CollectionRemediation = "remediation"
	CollectionQueueStats  = "queue_stats"
	CollectionHealth      = "health"
	CollectionDashboard   = "dashboard_stats"
)

// Key addresses one cached partition: a collection name plus the
// canonical signature of the filters it was fetched under. Singleton
// partitions use an empty filter.
type Key struct {
	Collection string
	Filter     string
}

func (k Key) String() string {
	return k.Collection + "?" + k.Filter
}

// KeyFor builds a key from request filters. url.Values.Encode sorts by
// parameter name, so equal filter sets always produce equal keys.
func KeyFor(collection string, filters url.Values) Key {
	return Key{Collection: collection, Filter: filters.Encode()}
}

type entry struct {
	data  any
	stale bool
}

// Store is a mutex-guarded cache of pulled data. Entries are written by
// Put, mutated in place by Patch, and marked stale by Invalidate; Fetch
// reads through it.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]*entry)}
}

// Put stores fresh data under the key.
func (s *Store) Put(k Key, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = &entry{data: data}
}

// Peek returns the cached data without triggering a fetch.
func (s *Store) Peek(k Key) (data any, stale bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return nil, false, false
	}
	return e.data, e.stale, true
}

// Invalidate marks the entry stale. Idempotent; a missing entry is a
// no-op since there is nothing to refetch.
func (s *Store) Invalidate(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok || e.stale {
		return
	}
	e.stale = true
	metrics.CacheInvalidationsTotal.WithLabelValues(k.Collection).Inc()
}

// InvalidateCollection marks every entry of the collection stale,
// regardless of the filters it was fetched under.
func (s *Store) InvalidateCollection(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if k.Collection != collection || e.stale {
			continue
		}
		e.stale = true
		metrics.CacheInvalidationsTotal.WithLabelValues(collection).Inc()
	}
}

// Patch applies an in-place mutation to the entry's data, leaving its
// staleness untouched. Returns false when the entry does not exist or
// apply declines the data.
func (s *Store) Patch(k Key, apply func(data any) (any, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return false
	}
	next, changed := apply(e.data)
	if !changed {
		return false
	}
	e.data = next
	metrics.CachePatchesTotal.Inc()
	return true
}

// PatchCollection applies the mutation to every entry of the collection
// and returns how many were changed.
func (s *Store) PatchCollection(collection string, apply func(data any) (any, bool)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	patched := 0
	for k, e := range s.entries {
		if k.Collection != collection {
			continue
		}
		next, changed := apply(e.data)
		if !changed {
			continue
		}
		e.data = next
		metrics.CachePatchesTotal.Inc()
		patched++
	}
	return patched
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]*entry)
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// getOrFetch returns fresh cached data, or fetches and caches it when
// the entry is missing or stale. Concurrent callers for one key share a
// single in-flight fetch.
func (s *Store) getOrFetch(ctx context.Context, k Key, fetch func(ctx context.Context) (any, error)) (any, error) {
	if data, stale, ok := s.Peek(k); ok && !stale {
		return data, nil
	}

	data, err, _ := s.group.Do(k.String(), func() (any, error) {
		// A sibling caller may have refreshed the entry while this one
		// waited on the flight group.
		if data, stale, ok := s.Peek(k); ok && !stale {
			return data, nil
		}
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.Put(k, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Fetch is the typed read-through: fresh data comes from the cache,
// stale or missing data from the fetch function.
func Fetch[T any](ctx context.Context, s *Store, k Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	data, err := s.getOrFetch(ctx, k, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %s holds %T, not %T", k, data, zero)
	}
	return typed, nil
}
