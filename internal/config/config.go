// Package config holds the configuration of the inventory service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	EnvProduction = "production"
)

// StoreConfig selects the product store backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	Seed   bool   `koanf:"seed"`
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case StoreMemory, StorePostgres:
		return nil
	case "":
		c.Driver = StoreMemory
		return nil
	default:
		return fmt.Errorf("unknown store driver %q, expected %q or %q", c.Driver, StoreMemory, StorePostgres)
	}
}

// AppConfig describes the runtime environment.
type AppConfig struct {
	Env string `koanf:"env"`
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Database   config.DatabaseConfig  `koanf:"database"`
	Store      StoreConfig            `koanf:"store"`
	App        AppConfig              `koanf:"app"`
	CORS       config.CORSConfig      `koanf:"cors"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Nats       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Store.Driver))
	b.WriteString(fmt.Sprintf("  store.seed: %t\n", c.Store.Seed))
	if c.Store.Driver == StorePostgres {
		b.WriteString(c.Database.String())
	}

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  app.env: %s\n", c.App.Env))
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))
	b.WriteString(c.CORS.String())

	b.WriteString(c.Nats.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Store.Driver == StorePostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}

	return nil
}
