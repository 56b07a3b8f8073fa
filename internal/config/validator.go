package config

import (
	"fmt"
	"net/url"
)

// ValidateStatic checks the parts of the configuration that must be correct at
// startup. The delivery endpoint may be empty (the transport then skips all
// sends), but if set it must be a well-formed absolute http(s) URL.
func ValidateStatic(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port)
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", cfg.Logging.Level)
	}

	if cfg.Delivery.Endpoint != "" {
		if err := ValidateEndpoint(cfg.Delivery.Endpoint); err != nil {
			return fmt.Errorf("delivery.endpoint: %w", err)
		}
	}

	if err := validateRegistry(&cfg.Registry); err != nil {
		return err
	}

	if cfg.Authoring.RateLimit.Enabled {
		if cfg.Authoring.RateLimit.RPS <= 0 {
			return fmt.Errorf("authoring.rate_limit.rps must be positive, got %f", cfg.Authoring.RateLimit.RPS)
		}
		if cfg.Authoring.RateLimit.Burst <= 0 {
			return fmt.Errorf("authoring.rate_limit.burst must be positive, got %d", cfg.Authoring.RateLimit.Burst)
		}
	}

	return nil
}

func validateRegistry(reg *RegistryConfig) error {
	optionIDs := make(map[string]struct{}, len(reg.Options))
	for _, opt := range reg.Options {
		if opt.ID == "" {
			return fmt.Errorf("registry.options: id is required")
		}
		if _, dup := optionIDs[opt.ID]; dup {
			return fmt.Errorf("registry.options: duplicate option type %q", opt.ID)
		}
		optionIDs[opt.ID] = struct{}{}

		switch opt.Source {
		case "api", "mongodb", "postgresql", "cache", "redis":
		default:
			return fmt.Errorf("registry.options: option type %q has unknown source %q", opt.ID, opt.Source)
		}
	}

	triggerIDs := make(map[string]struct{}, len(reg.Triggers))
	for _, trig := range reg.Triggers {
		if trig.ID == "" {
			return fmt.Errorf("registry.triggers: id is required")
		}
		if _, dup := triggerIDs[trig.ID]; dup {
			return fmt.Errorf("registry.triggers: duplicate trigger %q", trig.ID)
		}
		triggerIDs[trig.ID] = struct{}{}

		for _, ot := range trig.OptionTypes {
			if _, ok := optionIDs[ot]; !ok {
				return fmt.Errorf("registry.triggers: trigger %q references undeclared option type %q", trig.ID, ot)
			}
		}
	}

	return nil
}

// ValidateEndpoint reports whether raw is a usable delivery endpoint URL.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}
