package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://api.zyte.com/v1/extract", config.ZyteAPIURL)
	assert.Equal(t, 180*time.Second, config.ZyteTimeout)
	assert.Equal(t, 3, config.ZyteMaxRetries)
	assert.Equal(t, 5000, config.ZyteWaitTimeout)
	assert.Equal(t, "US", config.ZyteGeolocation)
	assert.Equal(t, uint32(1000), config.ZyteSessionHashMod)
	assert.Equal(t, "https://www.amazon.com", config.AmazonBaseURL)
	assert.Equal(t, "html_snapshots", config.SnapshotsDir)
	assert.Equal(t, 10, config.DefaultProductLimit)
	assert.Equal(t, 2*time.Second, config.ProductDelay)
	assert.Equal(t, float64(2), config.RetryBackoffBase)

	// Test with environment variables
	os.Setenv("ZYTE_API_URL", "https://zyte.example.com/v1/extract")
	os.Setenv("ZYTE_MAX_RETRIES", "5")
	os.Setenv("PRODUCT_DELAY_SECONDS", "0.5")
	os.Setenv("DEFAULT_PRODUCT_LIMIT", "3")
	os.Setenv("HTML_SNAPSHOTS_DIR", "/tmp/snapshots")

	config = LoadConfig()
	assert.Equal(t, "https://zyte.example.com/v1/extract", config.ZyteAPIURL)
	assert.Equal(t, 5, config.ZyteMaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.ProductDelay)
	assert.Equal(t, 3, config.DefaultProductLimit)
	assert.Equal(t, "/tmp/snapshots", config.SnapshotsDir)

	// Clean up
	os.Unsetenv("ZYTE_API_URL")
	os.Unsetenv("ZYTE_MAX_RETRIES")
	os.Unsetenv("PRODUCT_DELAY_SECONDS")
	os.Unsetenv("DEFAULT_PRODUCT_LIMIT")
	os.Unsetenv("HTML_SNAPSHOTS_DIR")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	config.ZyteAPIKey = ""

	// A missing API key is fatal for remote scraping but fine for local-only runs
	assert.Error(t, config.Validate(false))
	assert.NoError(t, config.Validate(true))

	config.ZyteAPIKey = "test-key"
	assert.NoError(t, config.Validate(false))

	config.ZyteMaxRetries = -1
	assert.Error(t, config.Validate(false))
}

func TestSearchURL(t *testing.T) {
	config := LoadConfig()
	assert.Equal(t, "https://www.amazon.com/s?k=desk+lamp", config.SearchURL("desk+lamp"))
}
