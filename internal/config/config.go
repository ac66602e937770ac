package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline of the HTTP router
	TurnTimeout     time.Duration // deadline of one dialog turn, store calls included

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Locale     string // embedded pack name ("en", "ru")
	LocaleFile string // optional custom pack, overrides Locale

	CatalogFile           string // path to the product catalog (JSON or YAML), empty = no catalog
	CatalogReloadSchedule string // cron spec for catalog reloads, empty = never
	SearchLimit           int    // max products returned by /search (0 = no limit)
	SearchBurst           int    // rate limit burst per client IP
	SearchRefillPerMin    int    // rate limit refill per client IP

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	CORSOrigins  []string // optional, origins allowed to call the products API from a browser
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	loadDotEnv(getenv("VOICELIST_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VOICELIST_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VOICELIST_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("VOICELIST_REQUEST_TIMEOUT", 5*time.Second),
		TurnTimeout:     mustDuration("VOICELIST_TURN_TIMEOUT", 2500*time.Millisecond),

		// Logging
		LogLevel:  getenv("VOICELIST_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VOICELIST_PRETTY_LOG", false),

		// Dialog
		Locale:     getenv("VOICELIST_LOCALE", "en"),
		LocaleFile: getenv("VOICELIST_LOCALE_FILE", ""),

		// Catalog
		CatalogFile:           getenv("VOICELIST_CATALOG_FILE", ""),
		CatalogReloadSchedule: getenv("VOICELIST_CATALOG_RELOAD_SCHEDULE", "@daily"),
		SearchLimit:           getenvInt("VOICELIST_SEARCH_LIMIT", 20),
		SearchBurst:           getenvInt("VOICELIST_SEARCH_BURST", 30),
		SearchRefillPerMin:    getenvInt("VOICELIST_SEARCH_REFILL_PER_MIN", 60),

		// Redis settings
		RedisAddr:             requireEnv("VOICELIST_REDIS_ADDR"),
		RedisUser:             getenv("VOICELIST_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("VOICELIST_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("VOICELIST_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("VOICELIST_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("VOICELIST_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("VOICELIST_ALLOWED_CIDRS", "")),
		CORSOrigins:  splitAndTrim(getenv("VOICELIST_CORS_ORIGINS", "")),
		TrustProxy:   mustBool("VOICELIST_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: VOICELIST_REDIS_PASSWORD is required when VOICELIST_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.CatalogReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CatalogReloadSchedule); err != nil {
			panic(fmt.Sprintf("❌ FATAL: Invalid VOICELIST_CATALOG_RELOAD_SCHEDULE %q: %v", cfg.CatalogReloadSchedule, err))
		}
	}

	if cfg.TurnTimeout <= 0 {
		panic("❌ FATAL: VOICELIST_TURN_TIMEOUT must be > 0")
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

// loadDotEnv populates unset variables from path. A missing file is fine.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Cannot read env file %s: %v", path, err))
	}
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
