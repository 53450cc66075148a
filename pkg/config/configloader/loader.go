// Package configloader assembles a service configuration from YAML, a .env file and the environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Validator is implemented by configuration structs that can check themselves after loading.
type Validator interface {
	Validate() error
}

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

// Load builds the configuration of serviceName from, in increasing priority,
// a YAML file, a .env file and the process environment, then validates it.
// Environment keys carry the upper-cased service name as prefix and use
// underscores between levels: INVENTORY_STORE_DRIVER sets store.driver.
// <PREFIX>CONFIG_FILE and <PREFIX>ENV_FILE override the file locations.
// Missing files are skipped; unreadable ones are logged and skipped.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	k := koanf.New(".")
	prefix := strings.ToUpper(serviceName) + "_"
	toKey := keyMapper(prefix)

	loadYAML(k, fileFromEnv(prefix+"CONFIG_FILE", defaultConfigFile))
	loadDotEnv(k, fileFromEnv(prefix+"ENV_FILE", defaultEnvFile), toKey)
	err := k.Load(env.Provider(prefix, ".", func(key string) string {
		if key == prefix+"CONFIG_FILE" || key == prefix+"ENV_FILE" {
			return ""
		}
		return toKey(key)
	}), nil)
	if err != nil {
		slog.Warn("Failed to load environment variables", slog.String("error", err.Error()))
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// keyMapper turns PREFIX_A_B into a.b.
func keyMapper(prefix string) func(string) string {
	lowerPrefix := strings.ToLower(prefix)
	return func(key string) string {
		key = strings.TrimPrefix(strings.ToLower(key), lowerPrefix)
		return strings.ReplaceAll(key, "_", ".")
	}
}

func fileFromEnv(name, fallback string) string {
	if path := os.Getenv(name); path != "" {
		return path
	}
	return fallback
}

func loadYAML(k *koanf.Koanf, path string) {
	err := k.Load(file.Provider(path), yaml.Parser())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load YAML config", slog.String("file", path), slog.String("error", err.Error()))
	}
}

func loadDotEnv(k *koanf.Koanf, path string, toKey func(string) string) {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to read env file", slog.String("file", path), slog.String("error", err.Error()))
		}
		return
	}
	conf := make(map[string]any, len(values))
	for key, value := range values {
		conf[toKey(key)] = value
	}
	if err := k.Load(confmap.Provider(conf, "."), nil); err != nil {
		slog.Warn("Failed to load env file", slog.String("file", path), slog.String("error", err.Error()))
	}
}
