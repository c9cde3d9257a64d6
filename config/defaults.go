package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL            = "http://localhost:8000"
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultBufferCapacity     = 200
	DefaultPullTimeout        = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 1 * time.Second
	DefaultPageSize           = 50
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

func (c *Config) applyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}

	if c.Push.ReconnectBaseDelay == 0 {
		c.Push.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Push.ReconnectMaxDelay == 0 {
		c.Push.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Push.HandshakeTimeout == 0 {
		c.Push.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if c.Stream.BufferCapacity == 0 {
		c.Stream.BufferCapacity = DefaultBufferCapacity
	}

	if c.Pull.Timeout == 0 {
		c.Pull.Timeout = DefaultPullTimeout
	}
	if c.Pull.MaxRetries == 0 {
		c.Pull.MaxRetries = DefaultMaxRetries
	}
	if c.Pull.RetryBackoff == 0 {
		c.Pull.RetryBackoff = DefaultRetryBackoff
	}
	if c.Pull.PageSize == 0 {
		c.Pull.PageSize = DefaultPageSize
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
