package config

import "strings"

// Config is the logbook's main configuration carrier.
type Config struct {
	App      AppConfig      `toml:"app" yaml:"app"`
	Auth     AuthConfig     `toml:"auth" yaml:"auth"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Seed     SeedConfig     `toml:"seed" yaml:"seed"`

	source string
}

// Source returns the path the config was loaded from.
func (c *Config) Source() string { return c.source }

type AppConfig struct {
	Env      string `toml:"env" yaml:"env"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogPath  string `toml:"log_path" yaml:"log_path"`
	HTTPAddr string `toml:"http_addr" yaml:"http_addr"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret" yaml:"jwt_secret"`
	SessionTTLHours int    `toml:"session_ttl_hours" yaml:"session_ttl_hours"`
	MaxTraders      int    `toml:"max_traders" yaml:"max_traders"`
	PinMinLen       int    `toml:"pin_min_len" yaml:"pin_min_len"`
	PinMaxLen       int    `toml:"pin_max_len" yaml:"pin_max_len"`
}

type DatabaseConfig struct {
	Path string `toml:"path" yaml:"path"`
	// AuditPath holds the append-only event log, kept in a separate file so
	// the journal database stays portable on its own.
	AuditPath string `toml:"audit_path" yaml:"audit_path"`
}

type SeedConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// keySet tracks which field paths were explicitly set in the config file, so
// defaults never clobber deliberate zero values.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes the default rule for a single field.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
