package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dealmungchi/coursecrawler/internal/browser"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// maxPageAttempts bounds how often one page is loaded before it is skipped
const maxPageAttempts = 2

// Options tunes a Controller
type Options struct {
	// PacingMin and PacingMax bound the randomized delay between pages
	PacingMin time.Duration
	PacingMax time.Duration
	// Workers is the number of pages crawled concurrently, one session each
	Workers int
}

// SkippedPage is a page whose records were not collected
type SkippedPage struct {
	Page int
	Err  error
}

// Result is the outcome of one crawl
type Result struct {
	Platform  course.Platform
	StartPage int
	// EndPage is the requested end page after clamping to LastPage
	EndPage int
	// LastPage is the resolved last page, 0 when it could not be resolved
	LastPage      int
	Records       []course.RawRecord
	Skipped       []SkippedPage
	FieldFailures int
}

// PagesSkipped returns the number of pages that failed
func (r Result) PagesSkipped() int {
	return len(r.Skipped)
}

// Controller drives the browser across the pages of one platform
type Controller struct {
	browser  browser.Browser
	registry *Registry
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewController creates a crawl controller
func NewController(b browser.Browser, registry *Registry, opts Options) *Controller {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.PacingMax < opts.PacingMin {
		opts.PacingMax = opts.PacingMin
	}
	return &Controller{browser: b, registry: registry, opts: opts, sleep: sleepCtx}
}

// Crawl collects raw records from pages start..end (inclusive) of platform.
// An invalid range or unknown platform fails before any page is fetched.
// A page that fails is skipped and reported in Result.Skipped. On
// cancellation the records gathered so far are returned with ctx's error.
func (c *Controller) Crawl(ctx context.Context, platform course.Platform, start, end int) (Result, error) {
	result := Result{Platform: platform, StartPage: start, EndPage: end}

	if start < 1 || start > end {
		return result, cerrors.NewConfiguration(
			fmt.Sprintf("start page %d, end page %d", start, end), cerrors.ErrInvalidPageRange)
	}
	adapter, ok := c.registry.Lookup(platform)
	if !ok {
		return result, cerrors.NewConfiguration(
			fmt.Sprintf("platform %q", platform), cerrors.ErrUnknownPlatform)
	}

	log := logger.ForPlatform(platform.String())

	last, err := browser.WithSession(ctx, c.browser, adapter.PageURL(1), func(s browser.Session) (int, error) {
		return adapter.Pagination.LastPage(ctx, s)
	})
	switch {
	case ctx.Err() != nil:
		return result, ctx.Err()
	case err != nil:
		// page 1 did not render; crawl only the start page rather than the whole range
		log.Warn().Err(err).Int("requested", end).Msg("Could not resolve last page, crawling start page only")
		end = start
		result.EndPage = start
	default:
		result.LastPage = last
		if end > last {
			log.Info().Int("requested", end).Int("last_page", last).Msg("Clamping end page")
			end = last
			result.EndPage = last
		}
	}

	if start > end {
		log.Info().Int("start", start).Int("last_page", end).Msg("Start page is past the last page, nothing to crawl")
		return result, nil
	}

	pages := make([]pageOutcome, end-start+1)
	if c.opts.Workers == 1 {
		err = c.crawlSequential(ctx, adapter, start, pages)
	} else {
		err = c.crawlConcurrent(ctx, adapter, start, pages)
	}

	for _, p := range pages {
		if !p.done {
			continue
		}
		if p.err != nil {
			result.Skipped = append(result.Skipped, SkippedPage{Page: p.page, Err: p.err})
			continue
		}
		result.Records = append(result.Records, p.records...)
		for _, r := range p.records {
			result.FieldFailures += len(r.Failures)
		}
	}

	log.Info().
		Int("start", start).
		Int("end", end).
		Int("records", len(result.Records)).
		Int("pages_skipped", len(result.Skipped)).
		Int("field_failures", result.FieldFailures).
		Msg("Crawl finished")

	return result, err
}

type pageOutcome struct {
	page    int
	done    bool
	records []course.RawRecord
	err     error
}

func (c *Controller) crawlSequential(ctx context.Context, adapter Adapter, start int, pages []pageOutcome) error {
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := c.pace(ctx); err != nil {
				return err
			}
		}
		pages[i] = c.crawlPage(ctx, adapter, start+i)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) crawlConcurrent(ctx context.Context, adapter Adapter, start int, pages []pageOutcome) error {
	var g errgroup.Group
	g.SetLimit(c.opts.Workers)

	for i := range pages {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 {
				if err := c.pace(ctx); err != nil {
					return err
				}
			}
			// each goroutine owns pages[i]
			pages[i] = c.crawlPage(ctx, adapter, start+i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Controller) crawlPage(ctx context.Context, adapter Adapter, page int) pageOutcome {
	log := logger.ForPlatform(adapter.Platform.String()).WithField("page", page)
	url := adapter.PageURL(page)

	var (
		records []course.RawRecord
		err     error
	)
	for attempt := 1; attempt <= maxPageAttempts; attempt++ {
		if attempt > 1 {
			log.Info().Err(err).Int("attempt", attempt).Msg("Retrying page")
			if perr := c.pace(ctx); perr != nil {
				err = perr
				break
			}
		}

		records, err = browser.WithSession(ctx, c.browser, url, func(s browser.Session) ([]course.RawRecord, error) {
			seq, err := adapter.Page.Records(ctx, s, page)
			if err != nil {
				return nil, err
			}
			return slices.Collect(seq), nil
		})
		if err == nil || !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	out := pageOutcome{page: page, done: true, records: records, err: err}
	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			out.done = false
			return out
		}
		log.Warn().Err(err).Str("url", url).Msg("Skipping page")
		return out
	}

	log.Debug().Int("records", len(records)).Msg("Page crawled")
	return out
}

// retryable reports whether a page error is worth a second attempt:
// network failures and pages whose cards never appeared.
func retryable(err error) bool {
	var crawlerErr *cerrors.CrawlerError
	return errors.As(err, &crawlerErr) && crawlerErr.IsRetryable()
}

func (c *Controller) pace(ctx context.Context) error {
	d := c.opts.PacingMin
	if spread := c.opts.PacingMax - c.opts.PacingMin; spread > 0 {
		d += rand.N(spread + 1)
	}
	if d <= 0 {
		return nil
	}
	return c.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
