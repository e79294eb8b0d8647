package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Zyte rendering service configuration
	ZyteAPIKey         string
	ZyteAPIURL         string
	ZyteTimeout        time.Duration
	ZyteMaxRetries     int
	ZyteWaitTimeout    int // post-render settle delay in milliseconds
	ZyteGeolocation    string
	ZyteDevice         string
	ZyteSessionHashMod uint32

	// Retry backoff: wait = base^attempt * multiplier seconds
	RetryBackoffBase       float64
	RetryBackoffMultiplier float64

	// Target site configuration
	AmazonBaseURL    string
	AmazonSearchPath string

	// Local snapshot store
	SnapshotsDir string

	// Output configuration
	DataDir      string
	ProductsJSON string
	ProductsCSV  string

	// Scrape behavior
	DefaultProductLimit int
	ProductDelay        time.Duration
	BanCooldown         time.Duration

	// Optional sink services
	MemcacheAddr         string
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		ZyteAPIKey:         os.Getenv("ZYTE_API_KEY"),
		ZyteAPIURL:         getEnv("ZYTE_API_URL", "https://api.zyte.com/v1/extract"),
		ZyteTimeout:        time.Duration(getEnvInt("ZYTE_TIMEOUT_SECONDS", 180)) * time.Second,
		ZyteMaxRetries:     getEnvInt("ZYTE_MAX_RETRIES", 3),
		ZyteWaitTimeout:    getEnvInt("ZYTE_WAIT_TIMEOUT_MS", 5000),
		ZyteGeolocation:    getEnv("ZYTE_GEOLOCATION", "US"),
		ZyteDevice:         getEnv("ZYTE_DEVICE", "desktop"),
		ZyteSessionHashMod: uint32(getEnvInt("ZYTE_SESSION_HASH_MOD", 1000)),

		RetryBackoffBase:       getEnvFloat("RETRY_BACKOFF_BASE", 2),
		RetryBackoffMultiplier: getEnvFloat("RETRY_BACKOFF_MULTIPLIER", 2),

		AmazonBaseURL:    getEnv("AMAZON_BASE_URL", "https://www.amazon.com"),
		AmazonSearchPath: getEnv("AMAZON_SEARCH_PATH", "/s?k="),

		SnapshotsDir: getEnv("HTML_SNAPSHOTS_DIR", "html_snapshots"),

		DataDir:      getEnv("DATA_DIR", "data"),
		ProductsJSON: getEnv("PRODUCTS_JSONL", "data/products.jsonl"),
		ProductsCSV:  getEnv("PRODUCTS_CSV", "data/products.csv"),

		DefaultProductLimit: getEnvInt("DEFAULT_PRODUCT_LIMIT", 10),
		ProductDelay:        time.Duration(getEnvFloat("PRODUCT_DELAY_SECONDS", 2) * float64(time.Second)),
		BanCooldown:         time.Duration(getEnvInt("BAN_COOLDOWN_SECONDS", 300)) * time.Second,

		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "products"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),

		Environment: getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable for the given mode.
// The API key is only required when a remote fetch could happen.
func (c *Config) Validate(localOnly bool) error {
	if !localOnly && c.ZyteAPIKey == "" {
		return fmt.Errorf("ZYTE_API_KEY not found in environment variables")
	}
	if c.ZyteMaxRetries < 0 {
		return fmt.Errorf("ZYTE_MAX_RETRIES must not be negative")
	}
	if c.DefaultProductLimit <= 0 {
		return fmt.Errorf("DEFAULT_PRODUCT_LIMIT must be positive")
	}
	if c.ZyteSessionHashMod == 0 {
		return fmt.Errorf("ZYTE_SESSION_HASH_MOD must be positive")
	}
	return nil
}

// SearchURL builds the search-results URL for a query
func (c *Config) SearchURL(query string) string {
	return c.AmazonBaseURL + c.AmazonSearchPath + query
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
