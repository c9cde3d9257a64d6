// Package cache holds pulled data keyed by collection and filter
// signature, and keeps it consistent with the push channel.
//
// The store never refetches on its own. Push events only patch cached
// entries in place or mark them stale; the next read through Fetch
// notices the stale flag and refetches, with concurrent readers of one
// key collapsed into a single server request. Both effect kinds are
// idempotent, so a replayed event cannot corrupt state.
package cache
