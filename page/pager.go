package page

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"github.com/chillbot-io/openlabels-go/model"
)

// ErrNoPage is returned by Next/Prev when the collection has no page in
// that direction.
var ErrNoPage = errors.New("no page in that direction")

// FetchFunc fetches one page of a cursor-paginated collection. An empty
// cursor means the first page under the given filters.
type FetchFunc[T any] func(ctx context.Context, cursor string, filters url.Values) (*CursorPage[T], error)

// Pager walks a cursor-paginated collection forward and backward. It
// holds the server's cursors between calls and passes them back
// verbatim. SetFilters discards all cursor state, so the next fetch
// starts from page one of the newly filtered collection.
type Pager[T any] struct {
	fetch FetchFunc[T]

	mu      sync.Mutex
	filters url.Values
	gen     int // bumped by SetFilters; a stale fetch may not update cursors
	next    string
	prev    string
	hasNext bool
	hasPrev bool
	loaded  bool
}

// NewPager creates a pager over the given fetch function with no
// filters applied.
func NewPager[T any](fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, filters: url.Values{}}
}

// SetFilters replaces the active filters and resets all cursor state.
func (p *Pager[T]) SetFilters(filters url.Values) {
	cloned := url.Values{}
	for k, vs := range filters {
		cloned[k] = append([]string(nil), vs...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = cloned
	p.gen++
	p.next = ""
	p.prev = ""
	p.hasNext = false
	p.hasPrev = false
	p.loaded = false
}

// HasNext reports whether the last fetched page had a successor.
func (p *Pager[T]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNext
}

// HasPrevious reports whether the last fetched page had a predecessor.
func (p *Pager[T]) HasPrevious() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasPrev
}

// First fetches page one under the active filters, discarding any
// cursor state accumulated so far.
func (p *Pager[T]) First(ctx context.Context) (*CursorPage[T], error) {
	return p.advance(ctx, "")
}

// Next fetches the page after the last one fetched. Before anything has
// been fetched it behaves like First. When the last page had no
// successor it returns ErrNoPage without a request.
func (p *Pager[T]) Next(ctx context.Context) (*CursorPage[T], error) {
	p.mu.Lock()
	if p.loaded && !p.hasNext {
		p.mu.Unlock()
		return nil, ErrNoPage
	}
	cursor := p.next
	p.mu.Unlock()

	return p.advance(ctx, cursor)
}

// Prev fetches the page before the last one fetched, or ErrNoPage when
// there is none.
func (p *Pager[T]) Prev(ctx context.Context) (*CursorPage[T], error) {
	p.mu.Lock()
	if !p.loaded || !p.hasPrev {
		p.mu.Unlock()
		return nil, ErrNoPage
	}
	cursor := p.prev
	p.mu.Unlock()

	return p.advance(ctx, cursor)
}

// Collect fetches every page from the start and concatenates the items
// in server order.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T

	pg, err := p.First(ctx)
	for {
		if err != nil {
			return nil, err
		}
		all = append(all, pg.Items...)
		if !pg.HasNext {
			return all, nil
		}
		pg, err = p.Next(ctx)
	}
}

// advance fetches the page at cursor and, if the filters have not been
// swapped underneath the request, records the returned cursors. A fetch
// error leaves cursor state untouched so the caller can retry.
func (p *Pager[T]) advance(ctx context.Context, cursor string) (*CursorPage[T], error) {
	p.mu.Lock()
	filters := p.filters
	gen := p.gen
	p.mu.Unlock()

	pg, err := p.fetch(ctx, cursor, filters)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if gen == p.gen {
		p.next = pg.NextCursor
		p.prev = pg.PreviousCursor
		p.hasNext = pg.HasNext
		p.hasPrev = pg.HasPrevious
		p.loaded = true
	}
	p.mu.Unlock()

	return pg, nil
}

// fetchCursorPage adapts one cursor-paginated endpoint to a FetchFunc.
func fetchCursorPage[T any](c *Client, endpoint, path string) FetchFunc[T] {
	return func(ctx context.Context, cursor string, filters url.Values) (*CursorPage[T], error) {
		query := url.Values{}
		for k, vs := range filters {
			query[k] = append([]string(nil), vs...)
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		query.Set("page_size", strconv.Itoa(c.pageSize))

		var resp CursorPage[T]
		if err := c.get(ctx, endpoint, path, query, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
}

// ResultsPager returns a pager over the scan results collection with
// the given filters applied.
func (c *Client) ResultsPager(opts ResultsOptions) *Pager[model.ScanResult] {
	p := NewPager(fetchCursorPage[model.ScanResult](c, "results", "/api/results"))
	p.SetFilters(opts.Query())
	return p
}

// AccessEventsPager returns a pager over the file access event
// collection with the given filters applied.
func (c *Client) AccessEventsPager(opts AccessEventsOptions) *Pager[model.AccessEvent] {
	p := NewPager(fetchCursorPage[model.AccessEvent](c, "access_events", "/api/events"))
	p.SetFilters(opts.Query())
	return p
}
