package stream

import (
	"time"

	"github.com/pattarpon/pokescan/pkg/logger"
)

// Option configures the client.
type Option func(*Client)

// WithHost sets the emulator host.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithPort sets the emulator port.
func WithPort(port int) Option {
	return func(c *Client) {
		if port > 0 && port <= 65535 {
			c.port = port
		}
	}
}

// WithPortFile names a discovery file holding the port to dial. It is
// read once at construction and overrides WithPort when valid.
func WithPortFile(path string) Option {
	return func(c *Client) {
		c.portFile = path
	}
}

// WithReconnectDelay sets the fixed delay between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.reconnectDelay = d
		}
	}
}

// WithReadBufferSize sets the size of the socket read buffer.
func WithReadBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readBufferSize = n
		}
	}
}

// WithDialer overrides the transport dialer. Used in tests.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dial = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
