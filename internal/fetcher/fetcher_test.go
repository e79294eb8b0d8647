package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	scraperrors "amazonworker/pkg/errors"

	"github.com/stretchr/testify/assert"
)

// memoryCache is an in-memory stand-in for the shared cooldown store
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (m *memoryCache) Set(key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestFetchPageLocalOnly(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.SnapshotsDir = t.TempDir()

	f, err := New(cfg, nil, Options{LocalOnly: true})
	assert.NoError(t, err)
	assert.True(t, f.LocalMode())

	url := "https://www.amazon.com/dp/B0C1234567"
	assert.NoError(t, f.snapshots.Save(url, "<html>cached</html>"))

	html, err := f.FetchPage(context.Background(), url)
	assert.NoError(t, err)
	assert.Equal(t, "<html>cached</html>", html)
}

func TestFetchPageLocalOnlyMissingSnapshotFails(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.SnapshotsDir = t.TempDir()

	f, err := New(cfg, nil, Options{LocalOnly: true})
	assert.NoError(t, err)

	_, err = f.FetchPage(context.Background(), "https://www.amazon.com/dp/B0C1234567")
	assert.Error(t, err)
	assert.Equal(t, scraperrors.ErrorTypeSnapshotMissing, scraperrors.TypeOf(err))
}

func TestFetchPageLocalFallsBackToRemote(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(map[string]string{"browserHtml": "<html>remote</html>"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.SnapshotsDir = t.TempDir()

	f, err := New(cfg, nil, Options{UseLocalHTML: true})
	assert.NoError(t, err)

	url := "https://www.amazon.com/dp/B0C1234567"
	html, err := f.FetchPage(context.Background(), url)
	assert.NoError(t, err)
	assert.Equal(t, "<html>remote</html>", html)
	assert.Equal(t, 1, requests)

	// The remote result becomes a snapshot, so the next fetch stays local
	assert.True(t, f.HasSnapshot(url))
	html, err = f.FetchPage(context.Background(), url)
	assert.NoError(t, err)
	assert.Equal(t, "<html>remote</html>", html)
	assert.Equal(t, 1, requests)
}

func TestFetchPageSavesSnapshotAfterRemoteFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"browserHtml": "<html>fresh</html>"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.SnapshotsDir = t.TempDir()

	f, err := New(cfg, nil, Options{})
	assert.NoError(t, err)

	url := "https://www.amazon.com/dp/B0C1234567"
	_, err = f.FetchPage(context.Background(), url)
	assert.NoError(t, err)
	assert.True(t, f.HasSnapshot(url))
}

func TestBanArmsCooldown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(520)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.SnapshotsDir = t.TempDir()
	cfg.BanCooldown = time.Minute

	cooldowns := newMemoryCache()
	f, err := New(cfg, cooldowns, Options{})
	assert.NoError(t, err)

	_, err = f.FetchPage(context.Background(), "https://www.amazon.com/dp/B0C1234567")
	assert.Error(t, err)
	assert.Equal(t, scraperrors.ErrorTypeBlocked, scraperrors.TypeOf(err))

	_, ok := cooldowns.data[cooldownKey]
	assert.True(t, ok)
}

func TestActiveCooldownSuppressesFetch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.SnapshotsDir = t.TempDir()

	cooldowns := newMemoryCache()
	assert.NoError(t, cooldowns.Set(cooldownKey, []byte("300"), time.Minute))

	f, err := New(cfg, cooldowns, Options{})
	assert.NoError(t, err)

	_, err = f.FetchPage(context.Background(), "https://www.amazon.com/dp/B0C1234567")
	assert.Error(t, err)
	assert.Equal(t, scraperrors.ErrorTypeBlocked, scraperrors.TypeOf(err))
	assert.Equal(t, 0, requests)
}
