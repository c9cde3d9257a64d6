package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	if _, err := c.WebSocketBase(); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}

	if c.Push.ReconnectBaseDelay <= 0 {
		return errors.New("push.reconnect_base_delay must be > 0")
	}
	if c.Push.ReconnectMaxDelay < c.Push.ReconnectBaseDelay {
		return fmt.Errorf("push.reconnect_max_delay (%v) cannot be below reconnect_base_delay (%v)",
			c.Push.ReconnectMaxDelay, c.Push.ReconnectBaseDelay)
	}

	if c.Stream.BufferCapacity < 1 {
		return errors.New("stream.buffer_capacity must be >= 1")
	}

	if c.Pull.MaxRetries < 0 {
		return errors.New("pull.max_retries must be >= 0")
	}
	if c.Pull.PageSize < 1 || c.Pull.PageSize > 500 {
		return fmt.Errorf("pull.page_size must be between 1 and 500, got %d", c.Pull.PageSize)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}
