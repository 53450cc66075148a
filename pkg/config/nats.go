package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultNATSClientName = "inventory-service"

// NATSConfig controls publishing of product events to JetStream.
type NATSConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Url          string        `koanf:"url"`
	ClientName   string        `koanf:"clientName"`
	Timeout      time.Duration `koanf:"timeout"`
	StreamMaxAge time.Duration `koanf:"streamMaxAge"`
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  clientName: %s\n", c.ClientName))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  streamMaxAge: %s\n", c.StreamMaxAge))
	return b.String()
}

// Validate only checks the connection settings when publishing is enabled.
// A zero StreamMaxAge keeps messages until the stream limits discard them.
func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	u, err := url.Parse(c.Url)
	if err != nil {
		return fmt.Errorf("invalid NATS URL %q: %w", c.Url, err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("unsupported NATS URL scheme %q", u.Scheme)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.StreamMaxAge < 0 {
		return fmt.Errorf("nats stream max age must not be negative: %s", c.StreamMaxAge)
	}
	if c.ClientName == "" {
		c.ClientName = defaultNATSClientName
	}
	return nil
}
