package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/dealmungchi/coursecrawler/helpers"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
	"github.com/dealmungchi/coursecrawler/services/cache"
)

// Options configures a Browserless client
type Options struct {
	Addr        string
	Token       string
	Timeout     time.Duration
	Rate        float64
	BlockTime   time.Duration
	MaxSessions int64
	Cache       cache.CacheService
}

// Browserless renders pages through a browserless /content endpoint. A
// session holds one rendered snapshot and re-renders only when asked to wait
// for a selector the snapshot lacks.
type Browserless struct {
	client    *resty.Client
	token     string
	cache     cache.CacheService
	blockTime time.Duration
	slots     *semaphore.Weighted
	log       *logger.Logger
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int64  `json:"timeout,omitempty"`
}

type waitForSelector struct {
	Selector string `json:"selector"`
	Timeout  int64  `json:"timeout"`
}

type contentRequest struct {
	URL                 string            `json:"url"`
	GotoOptions         gotoOptions       `json:"gotoOptions"`
	WaitForSelector     *waitForSelector  `json:"waitForSelector,omitempty"`
	SetExtraHTTPHeaders map[string]string `json:"setExtraHTTPHeaders,omitempty"`
}

// NewBrowserless creates a browserless client
func NewBrowserless(opts Options) *Browserless {
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 1
	}
	if opts.Rate <= 0 {
		opts.Rate = 1
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.Addr, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Content-Type", "application/json")

	limiter := rate.NewLimiter(rate.Limit(opts.Rate), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Browserless{
		client:    client,
		token:     opts.Token,
		cache:     opts.Cache,
		blockTime: opts.BlockTime,
		slots:     semaphore.NewWeighted(opts.MaxSessions),
		log:       logger.ForBrowser(),
	}
}

// Ping checks that the rendering service answers
func (b *Browserless) Ping(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return cerrors.NewNetwork("browserless", "rendering service unreachable", err)
	}
	b.log.Debug().Int("status", resp.StatusCode()).Msg("Rendering service reachable")
	return nil
}

func (b *Browserless) Open(ctx context.Context, url string) (Session, error) {
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	body, err := b.render(ctx, url, nil)
	if err != nil {
		b.slots.Release(1)
		return nil, err
	}

	doc, err := newDocument(url, body)
	if err != nil {
		b.slots.Release(1)
		return nil, cerrors.NewParsing(hostOf(url), "rendered page is not parseable", err)
	}
	doc.release = func() { b.slots.Release(1) }
	doc.reload = func(ctx context.Context, selector string, timeout time.Duration) (*goquery.Document, error) {
		body, err := b.render(ctx, url, &waitForSelector{Selector: selector, Timeout: timeout.Milliseconds()})
		if err != nil {
			return nil, err
		}
		fresh, err := newDocument(url, body)
		if err != nil {
			return nil, cerrors.NewParsing(hostOf(url), "rendered page is not parseable", err)
		}
		return fresh.doc, nil
	}
	return doc, nil
}

func (b *Browserless) blockKey(host string) string {
	return "render_blocked:" + host
}

func (b *Browserless) isBlocked(host string) bool {
	if b.cache == nil {
		return false
	}
	_, err := b.cache.Get(b.blockKey(host))
	return err == nil
}

func (b *Browserless) block(host string) {
	if b.cache == nil || b.blockTime <= 0 {
		return
	}
	seconds := strconv.Itoa(int(b.blockTime / time.Second))
	if err := b.cache.Set(b.blockKey(host), []byte(seconds), b.blockTime); err != nil {
		b.log.Warn().Err(err).Str("host", host).Msg("Failed to record rate limit block")
	}
}

func (b *Browserless) render(ctx context.Context, url string, wait *waitForSelector) ([]byte, error) {
	host := hostOf(url)
	if b.isBlocked(host) {
		return nil, cerrors.NewRateLimit(host, b.blockTime)
	}

	payload := contentRequest{
		URL:             url,
		GotoOptions:     gotoOptions{WaitUntil: "networkidle2", Timeout: b.client.GetClient().Timeout.Milliseconds()},
		WaitForSelector: wait,
		SetExtraHTTPHeaders: map[string]string{
			"User-Agent":      helpers.RandomUserAgent(),
			"Referer":         helpers.RandomReferer(),
			"Accept-Language": "en-US,en;q=0.9",
		},
	}

	req := b.client.R().SetContext(ctx).SetBody(payload)
	if b.token != "" {
		req.SetQueryParam("token", b.token)
	}

	start := time.Now()
	resp, err := req.Post("/content")
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if wait != nil {
				return nil, fmt.Errorf("%w: %s", ErrWaitTimeout, wait.Selector)
			}
		}
		return nil, cerrors.NewNetwork(host, "render request failed", err)
	}

	b.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Int("bytes", len(resp.Body())).
		Dur("elapsed", time.Since(start)).
		Msg("Rendered page")

	switch status := resp.StatusCode(); {
	case status == http.StatusTooManyRequests:
		b.block(host)
		return nil, cerrors.NewRateLimit(host, b.blockTime)
	case status == http.StatusRequestTimeout:
		return nil, waitTimeout(wait)
	case status >= 400:
		if wait != nil && strings.Contains(string(resp.Body()), "TimeoutError") {
			return nil, waitTimeout(wait)
		}
		return nil, cerrors.NewNetwork(host, fmt.Sprintf("rendering service returned status %d", status), nil)
	}

	body, err := helpers.DecodeUTF8(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, cerrors.NewParsing(host, "failed to decode rendered page", err)
	}
	if !helpers.LooksLikeHTML(body) {
		return nil, cerrors.NewParsing(host, fmt.Sprintf("rendering service returned non-HTML content (%d bytes)", len(body)), nil)
	}
	return body, nil
}

func waitTimeout(wait *waitForSelector) error {
	if wait == nil {
		return ErrWaitTimeout
	}
	return fmt.Errorf("%w: %s", ErrWaitTimeout, wait.Selector)
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
