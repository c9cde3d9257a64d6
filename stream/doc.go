// Package stream implements the per-scan push channel client.
//
// A Client is scoped to one running scan at a time. It dials the scan's
// dedicated WebSocket endpoint, recognizes only the file_result record
// shape, and keeps the most recent records in a bounded newest-first
// buffer. There is no reconnection: the stream lives exactly as long as
// the scan does, or until the caller switches scans, which closes the
// socket immediately and discards the buffer.
package stream
