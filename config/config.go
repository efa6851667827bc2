package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Observer  ObserverConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxWatches caps concurrently watched pages (each holds a tab).
	MaxWatches int // default: 20

	// FetchPoolSize is the tab pool capacity for one-shot fetches.
	FetchPoolSize int // default: 5

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL applied to the whole browser.
	DefaultProxy string
}

// FetchConfig controls the one-shot fetch dispatcher.
type FetchConfig struct {
	// DefaultTimeout is the per-request fetch deadline.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum client-requested timeout.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout bounds browser navigation alone.
	NavigationTimeout time.Duration // default: 15s

	// EscalationDelays stages the engine race: engine i starts after
	// delay i. default: [0s, 2s]
	EscalationDelays []time.Duration

	// MemoryTTL is how long a domain's winning engine is remembered.
	MemoryTTL time.Duration // default: 24h
}

// ObserverConfig controls the submission observer's timing.
type ObserverConfig struct {
	// AttemptCooldown is the minimum interval between counted attempts.
	AttemptCooldown time.Duration // default: 1500ms

	// SolveCooldown is the minimum interval between emitted solve events.
	SolveCooldown time.Duration // default: 3000ms

	// AttachDelay is how long to wait after navigation before observing
	// mutations, skipping the page's initial render churn.
	AttachDelay time.Duration // default: 1500ms
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the classify response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// WebhookConfig controls the event webhook sink.
type WebhookConfig struct {
	// URL is the endpoint events are posted to. Empty disables the sink.
	URL string

	// Secret signs request bodies with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SOLVEWATCH_HOST", "0.0.0.0"),
			Port: envIntOr("SOLVEWATCH_PORT", 8080),
			Mode: envOr("SOLVEWATCH_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:      envBoolOr("SOLVEWATCH_HEADLESS", true),
			MaxWatches:    envIntOr("SOLVEWATCH_MAX_WATCHES", 20),
			FetchPoolSize: envIntOr("SOLVEWATCH_FETCH_POOL", 5),
			NoSandbox:     envBoolOr("SOLVEWATCH_NO_SANDBOX", false),
			BrowserBin:    os.Getenv("SOLVEWATCH_BROWSER_BIN"),
			DefaultProxy:  os.Getenv("SOLVEWATCH_PROXY"),
		},
		Fetch: FetchConfig{
			DefaultTimeout:    envDurationOr("SOLVEWATCH_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("SOLVEWATCH_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("SOLVEWATCH_NAV_TIMEOUT", 15*time.Second),
			EscalationDelays: envDurationSliceOr("SOLVEWATCH_ESCALATION_DELAYS",
				[]time.Duration{0, 2 * time.Second}),
			MemoryTTL: envDurationOr("SOLVEWATCH_MEMORY_TTL", 24*time.Hour),
		},
		Observer: ObserverConfig{
			AttemptCooldown: envDurationOr("SOLVEWATCH_ATTEMPT_COOLDOWN", 1500*time.Millisecond),
			SolveCooldown:   envDurationOr("SOLVEWATCH_SOLVE_COOLDOWN", 3000*time.Millisecond),
			AttachDelay:     envDurationOr("SOLVEWATCH_ATTACH_DELAY", 1500*time.Millisecond),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SOLVEWATCH_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SOLVEWATCH_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SOLVEWATCH_RATE_RPS", 5.0),
			Burst:             envIntOr("SOLVEWATCH_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SOLVEWATCH_CACHE_MAX_ENTRIES", 1000),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("SOLVEWATCH_WEBHOOK_URL"),
			Secret: os.Getenv("SOLVEWATCH_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("SOLVEWATCH_LOG_LEVEL", "info"),
			Format: envOr("SOLVEWATCH_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
