package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors
// found. Dangerous zero-values are clamped to safe defaults; other
// validation errors are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if strings.ContainsAny(c.Server, "/ ") {
		errs = append(errs, fmt.Errorf("server %q must be a bare host name, without scheme or path", c.Server))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range, clamping to 443", c.Port))
		c.Port = 443
	}

	if c.KeyFile != "" && c.CertFile == "" {
		errs = append(errs, fmt.Errorf("key is set but cert is not; a key file requires its certificate"))
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.HTTPTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("http_timeout_seconds %d is below minimum 1, clamping", c.HTTPTimeoutSeconds))
		c.HTTPTimeoutSeconds = 1
	} else if c.HTTPTimeoutSeconds > 600 {
		errs = append(errs, fmt.Errorf("http_timeout_seconds %d exceeds maximum 600, clamping", c.HTTPTimeoutSeconds))
		c.HTTPTimeoutSeconds = 600
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
