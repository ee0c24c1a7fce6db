// Package browser is the automation capability the crawler drives: open a
// rendered page, wait for content, query elements. Process lifecycle of the
// underlying browser is owned by the rendering service, never by callers.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWaitTimeout is returned when a selector did not appear in time
	ErrWaitTimeout = errors.New("timed out waiting for selector")
	// ErrSessionClosed is returned by operations on a closed session
	ErrSessionClosed = errors.New("session closed")
)

// Browser opens rendered pages
type Browser interface {
	// Open loads url and returns a session bound to that page. The caller
	// must Close the session.
	Open(ctx context.Context, url string) (Session, error)
}

// Session is one loaded page
type Session interface {
	// URL returns the page URL the session was opened with
	URL() string

	// WaitFor blocks until selector matches at least one element, or
	// fails with ErrWaitTimeout once timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// QueryAll returns every element matching selector, searched within
	// the given element or the whole page when within is nil.
	QueryAll(within Element, selector string) []Element

	// QueryOne returns the first element matching selector
	QueryOne(within Element, selector string) (Element, bool)

	// Close releases the session
	Close() error
}

// Element is a handle to one DOM element
type Element interface {
	// Text returns the element text with whitespace runs collapsed
	Text() string

	// Lines returns the trimmed, non-empty text nodes in document order
	Lines() []string

	// Attr returns the value of attribute name
	Attr(name string) (string, bool)
}

// WithSession opens url, runs fn against the session and closes the
// session on every exit path, including panics inside fn.
func WithSession[T any](ctx context.Context, b Browser, url string, fn func(Session) (T, error)) (result T, err error) {
	sess, err := b.Open(ctx, url)
	if err != nil {
		return result, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(sess)
}
