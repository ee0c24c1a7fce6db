package browser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dealmungchi/coursecrawler/helpers"
)

// element wraps a goquery selection of exactly one node
type element struct {
	sel *goquery.Selection
}

func (e element) Text() string {
	return helpers.CollapseSpaces(e.sel.Text())
}

func (e element) Lines() []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, helpers.CollapseSpaces(s))
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range e.sel.Nodes {
		walk(n)
	}
	return lines
}

func (e element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// document is a Session over a parsed HTML snapshot. reload, when set,
// fetches a fresh snapshot that waited for a selector.
type document struct {
	mu      sync.RWMutex
	url     string
	doc     *goquery.Document
	closed  bool
	reload  func(ctx context.Context, selector string, timeout time.Duration) (*goquery.Document, error)
	release func()
}

func newDocument(url string, body []byte) (*document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &document{url: url, doc: doc}, nil
}

func (d *document) URL() string {
	return d.url
}

func (d *document) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	d.mu.RLock()
	closed, doc := d.closed, d.doc
	d.mu.RUnlock()

	if closed {
		return ErrSessionClosed
	}
	if doc.Find(selector).Length() > 0 {
		return nil
	}
	if d.reload == nil {
		return ErrWaitTimeout
	}

	fresh, err := d.reload(ctx, selector, timeout)
	if err != nil {
		return err
	}
	if fresh.Find(selector).Length() == 0 {
		return ErrWaitTimeout
	}

	d.mu.Lock()
	d.doc = fresh
	d.mu.Unlock()
	return nil
}

// scope returns the selection to search, or nil once the session is closed
func (d *document) scope(within Element) *goquery.Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil
	}
	if within == nil {
		return d.doc.Selection
	}
	if el, ok := within.(element); ok {
		return el.sel
	}
	return nil
}

func (d *document) QueryAll(within Element, selector string) []Element {
	root := d.scope(within)
	if root == nil {
		return nil
	}
	found := root.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, element{sel: s})
	})
	return elements
}

func (d *document) QueryOne(within Element, selector string) (Element, bool) {
	root := d.scope(within)
	if root == nil {
		return nil, false
	}
	found := root.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return element{sel: found}, true
}

func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if d.release != nil {
		d.release()
	}
	return nil
}
