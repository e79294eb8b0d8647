package fetcher

import (
	"context"
	"fmt"
	"time"

	"amazonworker/config"
	"amazonworker/logger"
	scraperrors "amazonworker/pkg/errors"
	"amazonworker/services/cache"
)

const cooldownKey = "amazon_ban_cooldown"

// Options control where page content comes from
type Options struct {
	// UseLocalHTML prefers snapshots, falling back to a remote fetch
	UseLocalHTML bool
	// LocalOnly never touches the network; a missing snapshot is a failure
	LocalOnly bool
}

// Fetcher performs one logical "get page content" operation per URL,
// combining the local snapshot store with the rendering service.
type Fetcher struct {
	zyte        *ZyteClient
	snapshots   *SnapshotStore
	cache       cache.CacheService
	banCooldown time.Duration
	opts        Options
	log         *logger.Logger
}

// New creates a page fetcher. cacheSvc is optional; when present it is used
// as a shared cooldown store armed after a ban exhausts its retries.
func New(cfg *config.Config, cacheSvc cache.CacheService, opts Options) (*Fetcher, error) {
	f := &Fetcher{
		snapshots:   NewSnapshotStore(cfg.SnapshotsDir),
		cache:       cacheSvc,
		banCooldown: cfg.BanCooldown,
		opts:        opts,
		log:         logger.ForFetcher(),
	}

	if !opts.LocalOnly {
		zyte, err := NewZyteClient(cfg)
		if err != nil {
			return nil, err
		}
		f.zyte = zyte
	}

	return f, nil
}

// FetchPage returns the rendered content for a URL. Failures are terminal
// for that URL only and never abort sibling fetches.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if f.opts.UseLocalHTML || f.opts.LocalOnly {
		html, err := f.snapshots.Load(url)
		if err == nil {
			return html, nil
		}
		if f.opts.LocalOnly {
			return "", err
		}
		f.log.Warn().Str("url", url).Err(err).Msg("Failed to load local snapshot, falling back to remote fetch")
	}

	if f.cache != nil {
		if _, err := f.cache.Get(cooldownKey); err == nil {
			return "", scraperrors.New(scraperrors.ErrorTypeBlocked, url, "ban cooldown active, fetch suppressed", nil)
		}
	}

	html, err := f.zyte.FetchPage(ctx, url)
	if err != nil {
		if scraperrors.TypeOf(err) == scraperrors.ErrorTypeBlocked {
			f.armCooldown()
		}
		return "", err
	}

	if err := f.snapshots.Save(url, html); err != nil {
		f.log.Warn().Str("url", url).Err(err).Msg("Failed to save HTML snapshot")
	}

	return html, nil
}

// HasSnapshot reports whether a local snapshot exists for the URL
func (f *Fetcher) HasSnapshot(url string) bool {
	return f.snapshots.Exists(url)
}

// LocalMode reports whether the fetcher prefers local snapshots
func (f *Fetcher) LocalMode() bool {
	return f.opts.UseLocalHTML || f.opts.LocalOnly
}

func (f *Fetcher) armCooldown() {
	if f.cache == nil {
		return
	}
	seconds := int(f.banCooldown.Seconds())
	if err := f.cache.Set(cooldownKey, []byte(fmt.Sprintf("%d", seconds)), f.banCooldown); err != nil {
		f.log.Warn().Err(err).Msg("Failed to arm ban cooldown")
	} else {
		f.log.Warn().Int("seconds", seconds).Msg("Ban cooldown armed, suppressing remote fetches")
	}
}
