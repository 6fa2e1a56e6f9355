package config

import (
	"fmt"
	"strings"
)

// validate runs basic sanity checks over the assembled configuration.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level %q is not a known level", a.LogLevel)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (a *AuthConfig) validate() error {
	if strings.TrimSpace(a.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret cannot be empty")
	}
	if a.SessionTTLHours <= 0 {
		return fmt.Errorf("auth.session_ttl_hours must be > 0")
	}
	if a.MaxTraders <= 0 {
		return fmt.Errorf("auth.max_traders must be > 0")
	}
	if a.PinMinLen <= 0 || a.PinMaxLen < a.PinMinLen {
		return fmt.Errorf("auth pin length bounds are invalid (min=%d max=%d)", a.PinMinLen, a.PinMaxLen)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if strings.TrimSpace(d.Path) == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	return nil
}
