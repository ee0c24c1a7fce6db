package crawler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dealmungchi/coursecrawler/internal/browser"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

var (
	// ErrNotFound means a field locator matched nothing inside the card
	ErrNotFound = errors.New("element not found")
	// ErrEmptyText means the located element carried no text
	ErrEmptyText = errors.New("empty text")
)

// Card is one rendered card under extraction. Field lookups are scoped to
// the card element; failures recorded through Extract accumulate on it.
type Card struct {
	Index int

	sess     browser.Session
	el       browser.Element
	log      *logger.Logger
	failures []error
}

// NewCard wraps el, found in sess, as the index-th card of a page
func NewCard(sess browser.Session, el browser.Element, index int, log *logger.Logger) *Card {
	if log == nil {
		log = logger.Nop()
	}
	return &Card{Index: index, sess: sess, el: el, log: log}
}

// Element returns the card element itself
func (c *Card) Element() browser.Element {
	return c.el
}

// Find returns the first element matching selector inside the card
func (c *Card) Find(selector string) (browser.Element, error) {
	el, ok := c.sess.QueryOne(c.el, selector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return el, nil
}

// FindAll returns every element matching selector inside the card
func (c *Card) FindAll(selector string) []browser.Element {
	return c.sess.QueryAll(c.el, selector)
}

// Text returns the non-empty text of the first element matching selector
func (c *Card) Text(selector string) (string, error) {
	el, err := c.Find(selector)
	if err != nil {
		return "", err
	}
	text := el.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyText, selector)
	}
	return text, nil
}

// Attr returns attribute name of the first element matching selector
func (c *Card) Attr(selector, name string) (string, error) {
	el, err := c.Find(selector)
	if err != nil {
		return "", err
	}
	v, ok := el.Attr(name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s[%s]", ErrNotFound, selector, name)
	}
	return v, nil
}

// Link returns the href of the first element matching selector, resolved
// against the page URL
func (c *Card) Link(selector string) (string, error) {
	href, err := c.Attr(selector, "href")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	base, err := url.Parse(c.sess.URL())
	if err != nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

// Lines returns the text lines of the first element matching selector
func (c *Card) Lines(selector string) ([]string, error) {
	el, err := c.Find(selector)
	if err != nil {
		return nil, err
	}
	lines := el.Lines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, selector)
	}
	return lines, nil
}

// Failures returns the field failures recorded so far
func (c *Card) Failures() []error {
	return c.failures
}

func (c *Card) fail(field cerrors.Field, err error) {
	extErr := cerrors.NewExtraction(field, err)
	c.failures = append(c.failures, extErr)

	event := c.log.Warn()
	if field.IsIdentity() {
		event = c.log.Error()
	}
	event.
		Str("field", string(field)).
		Int("card", c.Index).
		Err(err).
		Msg("Field extraction failed")
}

// Extract runs fn as an isolated attempt at one field. A returned error or
// a panic inside fn is recorded against field and yields an absent value;
// it never reaches the caller.
func Extract[T any](c *Card, field cerrors.Field, fn func() (T, error)) (out course.Opt[T]) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(field, fmt.Errorf("panic: %v", r))
			out = course.None[T]()
		}
	}()

	v, err := fn()
	if err != nil {
		c.fail(field, err)
		return course.None[T]()
	}
	return course.Some(v)
}
