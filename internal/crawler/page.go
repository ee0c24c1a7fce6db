package crawler

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/dealmungchi/coursecrawler/internal/browser"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// PageExtractor turns a loaded listing page into raw records
type PageExtractor interface {
	// Records waits for the page's cards and returns a sequence over them.
	// Each iteration re-queries the session, so the sequence can be
	// restarted while the session is open.
	Records(ctx context.Context, sess browser.Session, page int) (iter.Seq[course.RawRecord], error)
}

// CardFunc extracts one record from one card
type CardFunc func(c *Card) course.RawRecord

// CardPage is a PageExtractor for listings made of repeated card elements
type CardPage struct {
	Platform     course.Platform
	CardSelector string
	WaitTimeout  time.Duration
	Extract      CardFunc
}

func (p *CardPage) Records(ctx context.Context, sess browser.Session, page int) (iter.Seq[course.RawRecord], error) {
	log := logger.ForPlatform(p.Platform.String()).WithField("page", page)

	if err := sess.WaitFor(ctx, p.CardSelector, p.WaitTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return nil, cerrors.NewPageLoad(p.Platform.String(), page, err)
		}
		return nil, err
	}

	return func(yield func(course.RawRecord) bool) {
		for i, el := range sess.QueryAll(nil, p.CardSelector) {
			card := NewCard(sess, el, i, log)
			record := p.Extract(card)
			record.Failures = card.Failures()
			if !yield(record) {
				return
			}
		}
	}, nil
}
