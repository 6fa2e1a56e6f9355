package config

import "strings"

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":8787"
	defaultAuthSessionTTL  = 720 // 30 days
	defaultAuthMaxTraders  = 3
	defaultAuthPinMinLen   = 4
	defaultAuthPinMaxLen   = 8
	defaultDatabasePath    = "data/logbook.db"
	defaultAuditPath       = "data/logbook-events.db"
	defaultSeedPath        = "configs/seed.json"
	defaultDevJWTSecret    = "dev-secret-change-in-production"
)

// applyDefaults fills every sub-config the file left unset.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Auth.applyDefaults(keys)
	c.Database.applyDefaults(keys)
	c.Seed.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (a *AuthConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("auth.jwt_secret", &a.JWTSecret, defaultDevJWTSecret),
		fieldDefault{
			key:   "auth.session_ttl_hours",
			need:  func() bool { return a.SessionTTLHours <= 0 },
			apply: func() { a.SessionTTLHours = defaultAuthSessionTTL },
		},
		fieldDefault{
			key:   "auth.max_traders",
			need:  func() bool { return a.MaxTraders <= 0 },
			apply: func() { a.MaxTraders = defaultAuthMaxTraders },
		},
		fieldDefault{
			key:   "auth.pin_min_len",
			need:  func() bool { return a.PinMinLen <= 0 },
			apply: func() { a.PinMinLen = defaultAuthPinMinLen },
		},
		fieldDefault{
			key:   "auth.pin_max_len",
			need:  func() bool { return a.PinMaxLen <= 0 },
			apply: func() { a.PinMaxLen = defaultAuthPinMaxLen },
		},
	)
}

func (d *DatabaseConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("database.path", &d.Path, defaultDatabasePath),
		stringFieldDefault("database.audit_path", &d.AuditPath, defaultAuditPath),
	)
}

func (s *SeedConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("seed.path", &s.Path, defaultSeedPath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
