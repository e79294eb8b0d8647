package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"amazonworker/config"
	"amazonworker/internal/fetcher"
	"amazonworker/internal/model"
	"amazonworker/internal/scraper"
	"amazonworker/logger"
	"amazonworker/services/cache"
	"amazonworker/services/exporter"
	"amazonworker/services/publisher"

	"github.com/joho/godotenv"
)

func main() {
	query := flag.String("q", "", "Search query (e.g. 'massage gun', 'wireless headphones')")
	count := flag.Int("n", 0, "Number of products to scrape (default from DEFAULT_PRODUCT_LIMIT)")
	useLocal := flag.Bool("local", false, "Prefer local HTML snapshots, falling back to live scraping")
	localOnly := flag.Bool("local-only", false, "Use local HTML snapshots exclusively, never fetch remotely")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	if *query == "" {
		log.Fatal().Msg("Missing required -q search query")
	}

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(*localOnly); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("query", *query).
		Bool("local", *useLocal || *localOnly).
		Msg("Starting Amazon scraper")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// The cooldown cache is optional; without it bans are still retried,
	// just not shared across runs.
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
	}

	pageFetcher, err := fetcher.New(cfg, cacheSvc, fetcher.Options{
		UseLocalHTML: *useLocal,
		LocalOnly:    *localOnly,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize page fetcher")
	}

	s := scraper.New(pageFetcher, cfg)
	products, err := s.Scrape(ctx, *query, *count)
	if err != nil {
		log.Error().Err(err).Msg("Scrape run failed")
		os.Exit(1)
	}

	export := exporter.NewFileExporter(cfg.ProductsJSON, cfg.ProductsCSV)
	if err := export.Save(products); err != nil {
		log.Error().Err(err).Msg("Failed to export products")
		os.Exit(1)
	}

	if cfg.RedisAddr != "" {
		publishProducts(ctx, cfg, products)
	}

	log.Info().Int("count", len(products)).Msg("Scraping completed successfully")
}

// publishProducts pushes each record onto the configured Redis stream
func publishProducts(ctx context.Context, cfg *config.Config, products []model.Product) {
	log := logger.ForPublisher()

	pub := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	defer pub.Close()

	for _, p := range products {
		payload, err := json.Marshal(p)
		if err != nil {
			log.Error().Err(err).Str("asin", p.ASIN).Msg("Failed to marshal product")
			continue
		}

		key := p.ASIN
		if key == "" {
			key = "unknown"
		}
		if err := pub.Publish(key, payload); err != nil {
			log.Error().Err(err).Str("asin", p.ASIN).Msg("Failed to publish product")
		}
	}

	if err := pub.TrimStreams(); err != nil {
		log.Error().Err(err).Msg("Failed to trim streams")
	}
}
