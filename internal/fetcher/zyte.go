package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"time"

	"amazonworker/config"
	"amazonworker/logger"
	scraperrors "amazonworker/pkg/errors"
)

// banStatusCode is the upstream signal for an anti-bot block. Unlike other
// failure statuses it is treated as transient and retried with backoff.
const banStatusCode = 520

// ZyteClient fetches rendered page content through the Zyte extraction API
type ZyteClient struct {
	apiURL            string
	auth              string
	geolocation       string
	device            string
	waitTimeout       int
	sessionHashMod    uint32
	maxRetries        int
	backoffBase       float64
	backoffMultiplier float64
	httpClient        *http.Client
	log               *logger.Logger
}

// NewZyteClient creates a rendering-service client from the configuration.
// A missing API key is a configuration error and aborts before any fetch.
func NewZyteClient(cfg *config.Config) (*ZyteClient, error) {
	if cfg.ZyteAPIKey == "" {
		return nil, scraperrors.NewConfiguration("ZYTE_API_KEY not found in environment variables", nil)
	}

	return &ZyteClient{
		apiURL:            cfg.ZyteAPIURL,
		auth:              base64.StdEncoding.EncodeToString([]byte(cfg.ZyteAPIKey + ":")),
		geolocation:       cfg.ZyteGeolocation,
		device:            cfg.ZyteDevice,
		waitTimeout:       cfg.ZyteWaitTimeout,
		sessionHashMod:    cfg.ZyteSessionHashMod,
		maxRetries:        cfg.ZyteMaxRetries,
		backoffBase:       cfg.RetryBackoffBase,
		backoffMultiplier: cfg.RetryBackoffMultiplier,
		httpClient:        &http.Client{Timeout: cfg.ZyteTimeout},
		log:               logger.ForFetcher(),
	}, nil
}

type zyteRequest struct {
	URL            string           `json:"url"`
	BrowserHTML    bool             `json:"browserHtml"`
	JavaScript     bool             `json:"javascript"`
	Geolocation    string           `json:"geolocation"`
	Device         string           `json:"device"`
	SessionContext []sessionContext `json:"sessionContext"`
	Actions        []zyteAction     `json:"actions"`
}

type sessionContext struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type zyteAction struct {
	Action  string `json:"action"`
	Timeout int    `json:"timeout"`
}

type zyteResponse struct {
	BrowserHTML string `json:"browserHtml"`
}

// SessionToken derives a deterministic session-affinity token from the URL,
// bounded by the configured modulus to cap the number of distinct sessions.
func (c *ZyteClient) SessionToken(url string) string {
	h := fnv.New32a()
	h.Write([]byte(url))
	return fmt.Sprintf("session_%d", h.Sum32()%c.sessionHashMod)
}

// FetchPage fetches the rendered content for a URL. A ban status is retried
// with exponential backoff up to the configured max retry count; any other
// failure is terminal for this URL on the first occurrence.
func (c *ZyteClient) FetchPage(ctx context.Context, url string) (string, error) {
	for attempt := 0; ; attempt++ {
		c.log.Info().
			Str("url", truncate(url, 50)).
			Int("attempt", attempt+1).
			Int("max_attempts", c.maxRetries+1).
			Msg("Fetching page via Zyte")

		html, status, err := c.doRequest(ctx, url)
		if err == nil {
			c.log.Info().Str("url", truncate(url, 50)).Msg("Successfully fetched HTML")
			return html, nil
		}

		if status != banStatusCode {
			return "", err
		}

		if attempt >= c.maxRetries {
			c.log.Error().
				Str("url", truncate(url, 50)).
				Int("attempts", attempt+1).
				Msg("Max retries reached, website ban persists")
			return "", scraperrors.NewBlocked(url, attempt+1)
		}

		wait := c.backoffWait(attempt)
		c.log.Warn().
			Str("url", truncate(url, 50)).
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("Website ban detected (520), retrying after backoff")

		select {
		case <-ctx.Done():
			return "", scraperrors.New(scraperrors.ErrorTypeUpstreamStatus, url, "fetch cancelled during backoff", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// doRequest performs one rendering request. The returned status is only
// meaningful when err is non-nil; the caller retries solely on the ban code.
func (c *ZyteClient) doRequest(ctx context.Context, url string) (string, int, error) {
	payload := zyteRequest{
		URL:         url,
		BrowserHTML: true,
		JavaScript:  true,
		Geolocation: c.geolocation,
		Device:      c.device,
		SessionContext: []sessionContext{
			{Name: "amazon_session", Value: c.SessionToken(url)},
		},
		Actions: []zyteAction{
			{Action: "waitForTimeout", Timeout: c.waitTimeout},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, scraperrors.New(scraperrors.ErrorTypeUpstreamStatus, url, "marshal request payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", 0, scraperrors.New(scraperrors.ErrorTypeUpstreamStatus, url, "create request", err)
	}
	req.Header.Set("Authorization", "Basic "+c.auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures, including the per-request timeout, are
		// treated as non-transient: no retry.
		return "", 0, scraperrors.New(scraperrors.ErrorTypeUpstreamStatus, url, "rendering request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == banStatusCode {
		return "", banStatusCode, scraperrors.NewUpstreamStatus(url, banStatusCode, "website ban detected")
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", resp.StatusCode, scraperrors.NewUpstreamStatus(url, resp.StatusCode, truncate(string(respBody), 200))
	}

	var data zyteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", resp.StatusCode, scraperrors.New(scraperrors.ErrorTypeEmptyContent, url, "decode response", err)
	}

	if data.BrowserHTML == "" {
		return "", resp.StatusCode, scraperrors.NewEmptyContent(url)
	}

	return data.BrowserHTML, resp.StatusCode, nil
}

// backoffWait computes base^attempt * multiplier seconds
func (c *ZyteClient) backoffWait(attempt int) time.Duration {
	seconds := math.Pow(c.backoffBase, float64(attempt)) * c.backoffMultiplier
	return time.Duration(seconds * float64(time.Second))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
