package browser

import (
	"context"
	"fmt"
	"sync"
)

// Static serves fixed HTML per URL. It backs tests and offline replay of
// saved listing pages.
type Static struct {
	mu     sync.Mutex
	pages  map[string]string
	opened []string
	open   int
}

// NewStatic creates a Static browser over url -> HTML pages
func NewStatic(pages map[string]string) *Static {
	return &Static{pages: pages}
}

func (s *Static) Open(ctx context.Context, url string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.opened = append(s.opened, url)
	body, ok := s.pages[url]
	if ok {
		s.open++
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}

	doc, err := newDocument(url, []byte(body))
	if err != nil {
		s.mu.Lock()
		s.open--
		s.mu.Unlock()
		return nil, err
	}
	doc.release = func() {
		s.mu.Lock()
		s.open--
		s.mu.Unlock()
	}
	return doc, nil
}

// Opened returns every URL passed to Open, in call order
func (s *Static) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// OpenSessions returns the number of sessions not yet closed
func (s *Static) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
