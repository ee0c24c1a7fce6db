package crawler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/coursecrawler/internal/browser"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

func init() {
	logger.Default = logger.Nop()
}

func sevenPages() map[string]string {
	pages := make(map[string]string)
	for p := 1; p <= 7; p++ {
		pages[testURL(p)] = listingPage(7, "Course "+string(rune('A'+p-1))+"1", "Course "+string(rune('A'+p-1))+"2")
	}
	return pages
}

func newTestController(t *testing.T, b browser.Browser, workers int) *Controller {
	t.Helper()
	registry, err := NewRegistry(testAdapter())
	require.NoError(t, err)
	return NewController(b, registry, Options{Workers: workers})
}

func titles(records []course.RawRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title.Value)
	}
	return out
}

func TestCrawlClampsToLastPage(t *testing.T) {
	b := browser.NewStatic(sevenPages())
	c := newTestController(t, b, 1)

	result, err := c.Crawl(context.Background(), "example", 1, 100)
	require.NoError(t, err)

	assert.Equal(t, 7, result.LastPage)
	assert.Equal(t, 7, result.EndPage)
	assert.Len(t, result.Records, 14)
	assert.Equal(t, 0, result.PagesSkipped())

	opened := b.Opened()
	assert.Len(t, opened, 8) // pagination lookup + 7 pages
	for _, url := range opened {
		assert.NotContains(t, url, "p=8")
	}
	assert.Equal(t, 0, b.OpenSessions())
}

func TestCrawlRejectsBeforeFetching(t *testing.T) {
	b := browser.NewStatic(sevenPages())
	c := newTestController(t, b, 1)

	_, err := c.Crawl(context.Background(), "example", 5, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrInvalidPageRange)

	_, err = c.Crawl(context.Background(), "example", 0, 2)
	assert.ErrorIs(t, err, cerrors.ErrInvalidPageRange)

	_, err = c.Crawl(context.Background(), "coursera", 1, 2)
	assert.ErrorIs(t, err, cerrors.ErrUnknownPlatform)

	var crawlerErr *cerrors.CrawlerError
	require.ErrorAs(t, err, &crawlerErr)
	assert.Equal(t, cerrors.ErrorTypeConfiguration, crawlerErr.Type)

	assert.Empty(t, b.Opened())
}

func TestCrawlSkipsFailedPages(t *testing.T) {
	pages := sevenPages()
	pages[testURL(3)] = listingPage(7) // cards never appear
	delete(pages, testURL(5))           // render fails outright
	b := browser.NewStatic(pages)
	c := newTestController(t, b, 1)

	result, err := c.Crawl(context.Background(), "example", 2, 6)
	require.NoError(t, err)

	assert.Equal(t, []string{"Course B1", "Course B2", "Course D1", "Course D2", "Course F1", "Course F2"}, titles(result.Records))
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 3, result.Skipped[0].Page)
	assert.ErrorIs(t, result.Skipped[0].Err, cerrors.ErrPageLoad)
	assert.Equal(t, 5, result.Skipped[1].Page)
	assert.Equal(t, 0, b.OpenSessions())
}

func TestCrawlStartPastLastPage(t *testing.T) {
	b := browser.NewStatic(sevenPages())
	c := newTestController(t, b, 1)

	result, err := c.Crawl(context.Background(), "example", 9, 12)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, 7, result.EndPage)
	assert.Len(t, b.Opened(), 1)
}

func TestCrawlWithoutPaginationCrawlsStartPageOnly(t *testing.T) {
	pages := sevenPages()
	b := browser.NewStatic(pages)
	registry, err := NewRegistry(Adapter{
		Platform:    "example",
		URLTemplate: testTemplate,
		Page:        testAdapter().Page,
		Pagination:  &Pagination{Selector: "[data-page]", ReadySelector: ".never"},
	})
	require.NoError(t, err)
	c := NewController(b, registry, Options{})

	result, err := c.Crawl(context.Background(), "example", 3, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, result.LastPage)
	assert.Equal(t, 3, result.EndPage)
	assert.Equal(t, []string{"Course C1", "Course C2"}, titles(result.Records))
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []string{testURL(1), testURL(3)}, b.Opened())
}

// flakyBrowser fails the first failures[url] opens of url
type flakyBrowser struct {
	browser.Browser
	mu       sync.Mutex
	failures map[string]int
	err      error
}

func (f *flakyBrowser) Open(ctx context.Context, url string) (browser.Session, error) {
	f.mu.Lock()
	n := f.failures[url]
	if n > 0 {
		f.failures[url] = n - 1
	}
	f.mu.Unlock()
	if n > 0 {
		return nil, f.err
	}
	return f.Browser.Open(ctx, url)
}

func TestCrawlRetriesRetryablePageErrorsOnce(t *testing.T) {
	static := browser.NewStatic(sevenPages())
	b := &flakyBrowser{
		Browser:  static,
		failures: map[string]int{testURL(2): 1, testURL(3): 2},
		err:      cerrors.NewNetwork("courses.example.com", "render request failed", nil),
	}
	c := newTestController(t, b, 1)

	result, err := c.Crawl(context.Background(), "example", 1, 3)
	require.NoError(t, err)

	// page 2 recovers on the second attempt, page 3 fails both
	assert.Equal(t, []string{"Course A1", "Course A2", "Course B1", "Course B2"}, titles(result.Records))
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 3, result.Skipped[0].Page)
	assert.Equal(t, 0, b.failures[testURL(3)])
	assert.Equal(t, 0, static.OpenSessions())
}

func TestCrawlDoesNotRetryRateLimit(t *testing.T) {
	static := browser.NewStatic(sevenPages())
	b := &flakyBrowser{
		Browser:  static,
		failures: map[string]int{testURL(2): 1},
		err:      cerrors.NewRateLimit("courses.example.com", time.Minute),
	}
	c := newTestController(t, b, 1)

	result, err := c.Crawl(context.Background(), "example", 2, 2)
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.ErrorIs(t, result.Skipped[0].Err, cerrors.ErrRateLimited)
	assert.Equal(t, []string{testURL(1)}, static.Opened())
}

func TestCrawlConcurrentKeepsPageOrder(t *testing.T) {
	b := browser.NewStatic(sevenPages())
	c := newTestController(t, b, 3)

	result, err := c.Crawl(context.Background(), "example", 1, 7)
	require.NoError(t, err)

	want := []string{}
	for p := 0; p < 7; p++ {
		letter := string(rune('A' + p))
		want = append(want, "Course "+letter+"1", "Course "+letter+"2")
	}
	assert.Equal(t, want, titles(result.Records))
	assert.Equal(t, 0, b.OpenSessions())
}

func TestCrawlStopsAtPageBoundaryOnCancel(t *testing.T) {
	b := browser.NewStatic(sevenPages())
	registry, err := NewRegistry(testAdapter())
	require.NoError(t, err)
	c := NewController(b, registry, Options{PacingMin: time.Millisecond, PacingMax: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result, err := c.Crawl(ctx, "example", 1, 7)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"Course A1", "Course A2"}, titles(result.Records))
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 0, b.OpenSessions())
}

func TestRegistry(t *testing.T) {
	a := testAdapter()
	registry, err := NewRegistry(a)
	require.NoError(t, err)

	got, ok := registry.Lookup("example")
	require.True(t, ok)
	assert.Equal(t, "https://courses.example.com/list?p=3", got.PageURL(3))
	assert.Equal(t, []course.Platform{"example"}, registry.Platforms())

	_, ok = registry.Lookup("other")
	assert.False(t, ok)

	_, err = NewRegistry(a, a)
	assert.Error(t, err)

	bad := a
	bad.URLTemplate = "https://courses.example.com/list"
	_, err = NewRegistry(bad)
	assert.Error(t, err)
}
