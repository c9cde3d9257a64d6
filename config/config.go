package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for a sync client instance.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Push    PushConfig    `yaml:"push"`
	Stream  StreamConfig  `yaml:"stream"`
	Pull    PullConfig    `yaml:"pull"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig locates the scan server. Both websocket endpoints are
// derived from the base URL, so this is the only address configured.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// PushConfig holds session push channel settings.
type PushConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
}

// StreamConfig holds per-scan stream settings.
type StreamConfig struct {
	BufferCapacity int `yaml:"buffer_capacity"`
}

// PullConfig holds REST pull settings.
type PullConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	PageSize     int           `yaml:"page_size"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// WebSocketBase returns the server base URL with the scheme switched to
// its websocket counterpart.
func (c *Config) WebSocketBase() (string, error) {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// PushURL returns the session push channel endpoint.
func (c *Config) PushURL() (string, error) {
	base, err := c.WebSocketBase()
	if err != nil {
		return "", err
	}
	return base + "/ws/events", nil
}
