// Package page implements the pull side of the sync client: a REST
// client with retrying requests, typed cursor- and offset-paginated
// page shapes, and a Pager that walks cursor-paginated collections in
// either direction.
//
// Cursors are opaque server tokens. The Pager round-trips them verbatim
// and never inspects their contents; changing filters throws away all
// cursor state and restarts from the first page.
package page
