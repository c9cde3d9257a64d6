// Package events implements the session-wide push channel client.
//
// The Manager:
//   - Owns the single persistent WebSocket connection for the session
//   - Reconnects automatically with exponential backoff (doubling per
//     consecutive failure up to a ceiling, reset on a successful open)
//   - Parses wire envelopes into a closed set of typed events and
//     dispatches them to type-keyed subscribers in registration order
//   - Drops malformed or unrecognized envelopes before any subscriber
//     sees them
//
// Connectivity itself is observable through the reserved local-only
// TypeConnection pseudo-event; no transport error ever reaches a
// subscriber any other way.
package events
