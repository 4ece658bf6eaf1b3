// Package config loads the rowmapctl configuration: a YAML file, then
// ROWMAP_* environment overrides, then command-line flags applied by the
// caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/rowmap/dialect"
)

// Environment variables overriding the file.
const (
	EnvDialect = "ROWMAP_DIALECT"
	EnvDriver  = "ROWMAP_DRIVER"
	EnvDSN     = "ROWMAP_DSN"
	EnvDebug   = "ROWMAP_DEBUG"
)

// Config is the connection setup of the CLI.
type Config struct {
	// Dialect selects the statement dialect, one of dialect.Names.
	Dialect string `yaml:"dialect"`
	// Driver is the database/sql driver name: mysql, postgres, pgx or sqlite.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Debug logs every statement.
	Debug bool `yaml:"debug"`
	// SlowThreshold logs statements slower than it. Zero disables it.
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

// Default returns the configuration of an in-memory SQLite database.
func Default() Config {
	return Config{
		Dialect: dialect.SQLite,
		Driver:  "sqlite",
		DSN:     "file::memory:?cache=shared",
	}
}

// Load reads the file at path over the defaults and applies the
// environment. A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Dialect = getenv(EnvDialect, c.Dialect)
	c.Driver = getenv(EnvDriver, c.Driver)
	c.DSN = getenv(EnvDSN, c.DSN)
	if v, ok := os.LookupEnv(EnvDebug); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			c.Debug = true
		case "0", "false", "no", "":
			c.Debug = false
		default:
			return fmt.Errorf("config: %s: invalid boolean %q", EnvDebug, v)
		}
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if !dialect.Valid(c.Dialect) {
		errs = append(errs, fmt.Errorf("config: unknown dialect %q, want one of %s", c.Dialect, strings.Join(dialect.Names, ", ")))
	}
	if c.Driver == "" {
		errs = append(errs, errors.New("config: empty driver"))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("config: empty dsn"))
	}
	if c.SlowThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: negative slow_threshold %s", c.SlowThreshold))
	}
	return errors.Join(errs...)
}
