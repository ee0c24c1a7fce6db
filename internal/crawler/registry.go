package crawler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dealmungchi/coursecrawler/internal/course"
)

// Adapter binds a platform to its listing URL template, page extractor and
// pagination resolver
type Adapter struct {
	Platform    course.Platform
	URLTemplate string
	Page        PageExtractor
	Pagination  PaginationResolver
}

// PageURL fills the {page} placeholder of the template
func (a Adapter) PageURL(page int) string {
	return strings.ReplaceAll(a.URLTemplate, "{page}", strconv.Itoa(page))
}

// Registry is an immutable platform -> adapter mapping, built once at startup
type Registry struct {
	adapters map[course.Platform]Adapter
	order    []course.Platform
}

// NewRegistry builds a registry from adapters. Duplicate platforms and
// templates without a {page} placeholder are rejected.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[course.Platform]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.Platform]; dup {
			return nil, fmt.Errorf("platform %s registered twice", a.Platform)
		}
		if !strings.Contains(a.URLTemplate, "{page}") {
			return nil, fmt.Errorf("platform %s: URL template has no {page} placeholder", a.Platform)
		}
		if a.Page == nil || a.Pagination == nil {
			return nil, fmt.Errorf("platform %s: page extractor and pagination resolver are required", a.Platform)
		}
		r.adapters[a.Platform] = a
		r.order = append(r.order, a.Platform)
	}
	return r, nil
}

// Lookup returns the adapter for platform
func (r *Registry) Lookup(platform course.Platform) (Adapter, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}

// Platforms lists registered platforms in registration order
func (r *Registry) Platforms() []course.Platform {
	return append([]course.Platform(nil), r.order...)
}
