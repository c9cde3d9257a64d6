// Package model defines the domain types shared by every component:
// scan jobs, per-file scan results, file access events, remediation
// actions, and the queue/health statistics partitions.
//
// All types mirror the server's JSON wire format directly, so they are
// unmarshaled straight off pull responses and push payloads.
package model
