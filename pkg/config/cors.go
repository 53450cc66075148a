package config

import (
	"fmt"
	"strings"
)

type CORSConfig struct {
	Origins     []string `koanf:"origins"`
	Credentials bool     `koanf:"credentials"`
	MaxAge      int      `koanf:"maxAge"`
}

// String returns a string representation of the CORS configuration.
func (c *CORSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- CORS ---\n")
	b.WriteString(fmt.Sprintf("  origins: %s\n", strings.Join(c.Origins, ",")))
	b.WriteString(fmt.Sprintf("  credentials: %t\n", c.Credentials))
	b.WriteString(fmt.Sprintf("  maxAge: %d\n", c.MaxAge))
	return b.String()
}

func (c *CORSConfig) Validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("cors max age must not be negative: %d", c.MaxAge)
	}
	for _, origin := range c.Origins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors origins must not contain empty entries")
		}
	}
	return nil
}
