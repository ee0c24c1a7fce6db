package crawler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dealmungchi/coursecrawler/internal/browser"
)

// PaginationResolver finds the highest page number of a listing
type PaginationResolver interface {
	LastPage(ctx context.Context, sess browser.Session) (int, error)
}

// Pagination reads page numbers from pagination controls. When Attr is set
// the number comes from that attribute, otherwise from the element text.
// ReadySelector, when set, is waited for before the controls are read.
type Pagination struct {
	Selector      string
	Attr          string
	ReadySelector string
	WaitTimeout   time.Duration
}

func (p *Pagination) LastPage(ctx context.Context, sess browser.Session) (int, error) {
	if p.ReadySelector != "" {
		if err := sess.WaitFor(ctx, p.ReadySelector, p.WaitTimeout); err != nil {
			return 0, err
		}
	}

	var values []string
	for _, el := range sess.QueryAll(nil, p.Selector) {
		if p.Attr == "" {
			values = append(values, el.Text())
			continue
		}
		if v, ok := el.Attr(p.Attr); ok {
			values = append(values, v)
		}
	}
	return MaxPage(values), nil
}

// MaxPage returns the largest integer among values, ignoring anything that
// is not one. The result is never below 1.
func MaxPage(values []string) int {
	last := 1
	for _, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		last = max(last, n)
	}
	return last
}
