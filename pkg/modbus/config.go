package modbus

import "time"

// Option configures Server.
type Option func(*Config)

// Config holds the Modbus TCP listener configuration.
type Config struct {
	Host       string
	Port       int
	Timeout    time.Duration
	MaxClients uint
}

// WithAddress sets the listen host and port.
func WithAddress(host string, port int) Option {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

// WithTimeout sets the idle timeout after which a client connection is closed.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithMaxClients bounds concurrent client connections.
func WithMaxClients(n uint) Option {
	return func(c *Config) {
		c.MaxClients = n
	}
}
