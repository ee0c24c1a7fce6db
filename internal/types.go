package internal

import (
	"context"

	"github.com/dealmungchi/coursecrawler/config"
	"github.com/dealmungchi/coursecrawler/internal/browser"
	"github.com/dealmungchi/coursecrawler/internal/crawler"
	"github.com/dealmungchi/coursecrawler/internal/ingest"
	"github.com/dealmungchi/coursecrawler/internal/pipeline"
	"github.com/dealmungchi/coursecrawler/internal/platform"
	"github.com/dealmungchi/coursecrawler/internal/store"
	"github.com/dealmungchi/coursecrawler/logger"
	"github.com/dealmungchi/coursecrawler/services/cache"
	"github.com/dealmungchi/coursecrawler/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Config    *config.Config
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Browser   browser.Browser
	Store     *store.Store
}

// NewDependencies connects every service the pipeline needs. Memcache and
// Redis are optional: an unreachable memcache falls back to an in-process
// cache and an unreachable Redis disables event publishing.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.Default
	deps := &Dependencies{Config: cfg}

	s, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	deps.Store = s

	mc := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := mc.Ping(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, using in-process cache")
		deps.Cache = cache.NewMemoryCache()
	} else {
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		deps.Cache = mc
	}

	deps.Publisher = publisher.Nop{}
	if cfg.PublishEvents {
		rp := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := rp.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, events will not be published")
			rp.Close()
		} else {
			log.Info().
				Str("addr", cfg.RedisAddr).
				Int("db", cfg.RedisDB).
				Str("stream", cfg.RedisStream).
				Msg("Connected to Redis")
			deps.Publisher = rp
		}
	}

	deps.Browser = browser.NewBrowserless(browser.Options{
		Addr:        cfg.BrowserlessAddr,
		Token:       cfg.BrowserlessToken,
		Timeout:     cfg.RenderTimeout,
		Rate:        cfg.RenderRate,
		BlockTime:   cfg.RateLimitBlock,
		MaxSessions: int64(cfg.PageWorkers),
		Cache:       deps.Cache,
	})

	return deps, nil
}

// Runner builds the crawl-and-ingest pipeline over the dependencies
func (d *Dependencies) Runner() (*pipeline.Runner, error) {
	registry, err := platform.NewRegistry(d.Config)
	if err != nil {
		return nil, err
	}

	controller := crawler.NewController(d.Browser, registry, crawler.Options{
		PacingMin: d.Config.PacingMin,
		PacingMax: d.Config.PacingMax,
		Workers:   d.Config.PageWorkers,
	})

	return pipeline.NewRunner(controller, ingest.NewEngine(d.Store), d.Publisher, d.Config.RunTimeout), nil
}

// Close releases every connection
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
	if d.Store != nil {
		d.Store.Close()
	}
}
