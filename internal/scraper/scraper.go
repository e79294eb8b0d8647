package scraper

import (
	"context"
	"net/url"
	"sync"
	"time"

	"amazonworker/config"
	"amazonworker/internal/extractor"
	"amazonworker/internal/model"
	"amazonworker/logger"
)

// Fetcher is the page acquisition dependency of the orchestrator
type Fetcher interface {
	// FetchPage returns the rendered content for a URL
	FetchPage(ctx context.Context, url string) (string, error)

	// HasSnapshot reports whether a local snapshot exists for the URL
	HasSnapshot(url string) bool

	// LocalMode reports whether the fetcher operates from local snapshots
	LocalMode() bool
}

// Scraper drives the end-to-end acquisition flow: one list-page fetch,
// then one paced concurrent detail fetch+extract per candidate.
type Scraper struct {
	fetcher Fetcher
	cfg     *config.Config
	delay   time.Duration
	log     *logger.Logger
}

// New creates a scrape orchestrator
func New(fetcher Fetcher, cfg *config.Config) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		cfg:     cfg,
		delay:   cfg.ProductDelay,
		log:     logger.ForScraper(),
	}
}

// Scrape fetches the search page for query, then the top n detail pages.
// Individual detail failures yield no record and never abort siblings;
// the result order matches the candidate order restricted to successes.
func (s *Scraper) Scrape(ctx context.Context, query string, n int) ([]model.Product, error) {
	if n <= 0 {
		n = s.cfg.DefaultProductLimit
	}

	searchURL := s.cfg.SearchURL(url.QueryEscape(query))
	s.log.Info().
		Str("query", query).
		Int("limit", n).
		Bool("local_mode", s.fetcher.LocalMode()).
		Msg("Starting product scrape")

	html, err := s.fetcher.FetchPage(ctx, searchURL)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load search results page")
		return nil, err
	}

	candidates, err := extractor.ExtractSearchResults(html, n, s.cfg.AmazonBaseURL)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to extract search results")
		return nil, err
	}

	if s.fetcher.LocalMode() {
		candidates = s.filterToSnapshots(candidates)
	}

	s.log.Info().Int("count", len(candidates)).Msg("Found products to process")

	// One slot per candidate keeps the output in candidate order without
	// coordinating writers: each task owns exactly one index.
	results := make([]*model.Product, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, pageURL string) {
			defer wg.Done()
			results[idx] = s.fetchDetail(ctx, pageURL)
		}(i, candidate)

		// Pace launches to avoid triggering upstream rate limiting.
		// No delay after the last item.
		if i < len(candidates)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}

	wg.Wait()

	products := make([]model.Product, 0, len(candidates))
	for _, p := range results {
		if p != nil {
			products = append(products, *p)
		}
	}

	s.log.Info().
		Int("attempted", len(candidates)).
		Int("succeeded", len(products)).
		Msg("Scraping complete")

	return products, nil
}

// fetchDetail fetches and extracts one detail page. Any failure degrades to
// "no record" for this URL.
func (s *Scraper) fetchDetail(ctx context.Context, pageURL string) *model.Product {
	html, err := s.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		s.log.Error().Str("url", pageURL).Err(err).Msg("Failed to load product page")
		return nil
	}

	product, err := extractor.ExtractProduct(html, pageURL)
	if err != nil {
		s.log.Error().Str("url", pageURL).Err(err).Msg("Failed to extract product details")
		return nil
	}

	title := product.Title
	if title == "" {
		title = "Unknown product"
	}
	s.log.Info().Str("title", title).Msg("Extracted product details")
	return &product
}

// filterToSnapshots drops candidates whose detail snapshot file does not
// exist, so a partial snapshot set does not abort a local run.
func (s *Scraper) filterToSnapshots(candidates []string) []string {
	filtered := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if s.fetcher.HasSnapshot(candidate) {
			filtered = append(filtered, candidate)
		}
	}

	if skipped := len(candidates) - len(filtered); skipped > 0 {
		s.log.Info().
			Int("using", len(filtered)).
			Int("skipped", skipped).
			Msg("Local mode: skipping products without snapshot files")
	}

	return filtered
}
