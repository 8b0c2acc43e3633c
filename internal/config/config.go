package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sitewatch/internal/model"
)

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	maxHTTPTimeout = 10 * time.Second
	maxTLSTimeout  = 5 * time.Second
)

type Config struct {
	Backend       string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
	RegistryCSV   string
	Policy        model.Policy
	Port          string
	MetricsAddr   string
	LogFile       string
	CheckSchedule string
	EnableCache   bool
	CacheTTL      time.Duration
	DNSResolvers  string
	UserAgent     string
	HTTPTimeout   time.Duration
	TLSTimeout    time.Duration
	DNSTimeout    time.Duration
	WhoisTimeout  time.Duration
}

// LoadConfig reads the environment, after merging an optional .env file from
// the working directory. Values already set in the environment win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend:       strings.ToLower(getEnv("STORE_BACKEND", BackendRedis)),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SQLitePath:    getEnv("SQLITE_PATH", "sitewatch.db"),
		RegistryCSV:   os.Getenv("REGISTRY_CSV"),
		Port:          getEnv("PORT", "5000"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		LogFile:       os.Getenv("LOG_FILE"),
		CheckSchedule: getEnv("CHECK_SCHEDULE", "@every 3h"),
		EnableCache:   getEnvBool("ENABLE_CACHE", true),
		CacheTTL:      getEnvDuration("CACHE_TTL", 3*time.Hour),
		DNSResolvers:  getEnv("DNS_RESOLVERS", "8.8.8.8:53,1.1.1.1:53"),
		UserAgent:     getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", maxHTTPTimeout),
		TLSTimeout:    getEnvDuration("TLS_TIMEOUT", maxTLSTimeout),
		DNSTimeout:    getEnvDuration("DNS_TIMEOUT", 5*time.Second),
		WhoisTimeout:  getEnvDuration("WHOIS_TIMEOUT", 10*time.Second),
	}

	policy, ok := model.ParsePolicy(getEnv("HISTORY_POLICY", string(model.PolicyAppend)))
	if !ok {
		return nil, fmt.Errorf("HISTORY_POLICY must be %q or %q", model.PolicyAppend, model.PolicyUpsert)
	}
	cfg.Policy = policy

	if cfg.Backend != BackendRedis && cfg.Backend != BackendSQLite {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendSQLite, cfg.Backend)
	}

	cfg.HTTPTimeout = clamp(cfg.HTTPTimeout, maxHTTPTimeout)
	cfg.TLSTimeout = clamp(cfg.TLSTimeout, maxTLSTimeout)

	return cfg, nil
}

// Resolvers splits DNS_RESOLVERS; an empty list means the system resolver.
func (c *Config) Resolvers() []string {
	var out []string
	for _, r := range strings.Split(c.DNSResolvers, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func clamp(d, max time.Duration) time.Duration {
	if d <= 0 || d > max {
		return max
	}
	return d
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
