package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	UpstreamURL     string        // base URL of the marketplace API (ex: https://api.productbazar.ext)
	RequestTimeout  time.Duration // per upstream request budget (default: 20s)
	RetryBase       time.Duration // initial retry backoff (default: 250ms)
	MaxConcurrent   int           // upstream request slots (default: 16)
	DefaultPageSize int           // fallback page size for list surfaces (default: 12)

	LexiconFile    string        // path to lexicon.yaml (optional, empty = embedded defaults only)
	ReloadInterval time.Duration // interval to reload the lexicon file (default: 1h)

	SessionTTL    time.Duration // idle session lifetime (default: 30m)
	SweepInterval time.Duration // session sweeper interval (default: 5m)
	SeenCapacity  int           // dedup seen-set LRU capacity (default: 500)
	CrumbWindow   time.Duration // breadcrumb suppression window (default: 5m)

	AllowedOrigins []string // browser origins allowed by CORS

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Rate limiting
	RateBurst  int  // token bucket burst per client IP
	RateRefill int  // tokens refilled per IP per minute
	TrustProxy bool // true => trust X-Forwarded-For headers
}

func Load() *Config {
	// Best effort: local development reads .env, production relies on real env.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BAZAR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BAZAR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BAZAR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BAZAR_PRETTY_LOG", true),

		// Upstream API
		UpstreamURL:     requireEnv("BAZAR_UPSTREAM_URL"),
		RequestTimeout:  mustDuration("BAZAR_REQUEST_TIMEOUT", 20*time.Second),
		RetryBase:       mustDuration("BAZAR_RETRY_BASE", 250*time.Millisecond),
		MaxConcurrent:   getenvInt("BAZAR_MAX_CONCURRENT", 16),
		DefaultPageSize: getenvInt("BAZAR_DEFAULT_PAGE_SIZE", 12),

		// Search lexicon
		LexiconFile:    getenv("BAZAR_LEXICON_FILE", ""),
		ReloadInterval: mustDuration("BAZAR_RELOAD_SOURCE_INTERVAL", time.Hour),

		// Sessions
		SessionTTL:    mustDuration("BAZAR_SESSION_TTL", 30*time.Minute),
		SweepInterval: mustDuration("BAZAR_SWEEP_INTERVAL", 5*time.Minute),
		SeenCapacity:  getenvInt("BAZAR_SEEN_CAPACITY", 500),
		CrumbWindow:   mustDuration("BAZAR_CRUMB_WINDOW", 5*time.Minute),

		AllowedOrigins: splitAndTrim(getenv("BAZAR_ALLOWED_ORIGINS", "")),

		// Redis settings
		RedisAddr:           requireEnv("BAZAR_REDIS_ADDR"),
		RedisUser:           getenv("BAZAR_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("BAZAR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BAZAR_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Rate limiting
		RateBurst:  getenvInt("BAZAR_RATE_BURST", 30),
		RateRefill: getenvInt("BAZAR_RATE_REFILL_PER_MIN", 60),
		TrustProxy: mustBool("BAZAR_TRUST_PROXY", true),
	}

	if !strings.HasPrefix(cfg.UpstreamURL, "http://") && !strings.HasPrefix(cfg.UpstreamURL, "https://") {
		panic(fmt.Sprintf("❌ FATAL: BAZAR_UPSTREAM_URL must be an absolute URL, got %q", cfg.UpstreamURL))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
