package config

import (
	"fmt"
	"slices"
	"strings"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// LogConfig selects the minimum level and the output encoding of the service logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// String returns a string representation of the log configuration.
func (c *LogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Log ---\n")
	b.WriteString(fmt.Sprintf("  level: %s\n", c.Level))
	b.WriteString(fmt.Sprintf("  format: %s\n", c.Format))
	return b.String()
}

// Validate normalizes the level and format, defaulting to info and json.
func (c *LogConfig) Validate() error {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if c.Level == "" {
		c.Level = "info"
	}
	if !slices.Contains(logLevels, c.Level) {
		return fmt.Errorf("unknown log level %q, expected one of %s", c.Level, strings.Join(logLevels, ", "))
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "":
		c.Format = LogFormatJSON
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("unknown log format %q, expected %q or %q", c.Format, LogFormatJSON, LogFormatText)
	}
	return nil
}
