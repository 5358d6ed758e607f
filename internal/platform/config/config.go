package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"passgate/internal/passes/provider"
)

// DefaultProviderTimeout bounds each provider HTTP call when PASSENTRY_TIMEOUT is unset.
var DefaultProviderTimeout = 10 * time.Second

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    slog.Level

	PassEntry       PassEntry
	ProviderTimeout time.Duration
}

// PassEntry holds the provider credentials. Empty values are allowed here;
// the client rejects them per request and readiness reports them.
type PassEntry struct {
	APIKey     string
	TemplateID string
	APIURL     string
}

// Provider converts the settings into the client's configuration.
func (p PassEntry) Provider() provider.Config {
	return provider.Config{
		APIKey:     p.APIKey,
		TemplateID: p.TemplateID,
		APIURL:     p.APIURL,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Server {
	addr := getenv("PASSGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	env := getenv("PASSGATE_ENV")
	if env == "" {
		env = "development"
	}

	timeout := DefaultProviderTimeout
	if raw := getenv("PASSENTRY_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	level, err := ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		level = slog.LevelInfo
	}

	return Server{
		Addr:        addr,
		Environment: env,
		LogLevel:    level,
		PassEntry: PassEntry{
			APIKey:     strings.TrimSpace(getenv("PASSENTRY_API_KEY")),
			TemplateID: strings.TrimSpace(getenv("PASSENTRY_TEMPLATE_ID")),
			APIURL:     strings.TrimSpace(getenv("PASSENTRY_API_URL")),
		},
		ProviderTimeout: timeout,
	}
}

var errUnknownLevel = errors.New("unknown log level")

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errUnknownLevel
}
