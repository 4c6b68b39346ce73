package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable, e.g. COOKBOOK_HTTP_PORT.
const EnvPrefix = "COOKBOOK"

// Config captures environment driven settings shared by the CLI and the web
// server.
type Config struct {
	Storage           string        `envconfig:"STORAGE" default:"json"`
	DataPath          string        `envconfig:"DATA_PATH"`
	HTTPHost          string        `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort          int           `envconfig:"HTTP_PORT" default:"4173"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"json"`
	CLILogLevel       string        `envconfig:"CLI_LOG_LEVEL" default:"error"`
	SQLiteBusyTimeout time.Duration `envconfig:"SQLITE_BUSY_TIMEOUT" default:"5s"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every variable holding an unsupported value.
func (c Config) Validate() error {
	invalid := make([]string, 0, 4)

	switch c.Storage {
	case "json", "sqlite":
	default:
		invalid = append(invalid, EnvPrefix+"_STORAGE")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, EnvPrefix+"_HTTP_PORT")
	}
	if !validLevel(c.LogLevel) {
		invalid = append(invalid, EnvPrefix+"_LOG_LEVEL")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		invalid = append(invalid, EnvPrefix+"_LOG_FORMAT")
	}
	if !validLevel(c.CLILogLevel) {
		invalid = append(invalid, EnvPrefix+"_CLI_LOG_LEVEL")
	}
	if c.SQLiteBusyTimeout < 0 {
		invalid = append(invalid, EnvPrefix+"_SQLITE_BUSY_TIMEOUT")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Addr is the listen address for the web server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func validLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
