// Package config loads the sync client's YAML configuration.
//
// The server base URL is the only environment-level setting; the push
// and per-scan websocket endpoints are derived from it. Everything else
// tunes behavior and has a working default.
package config
