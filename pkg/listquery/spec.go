package listquery

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the first page
	DefaultPage = 1
	// DefaultPageSize bounds listings when the caller does not choose one.
	// Listings are never unbounded.
	DefaultPageSize = 25
	// MaxPageSize caps caller-chosen page sizes
	MaxPageSize = 100
)

// Spec is the declarative description of one list query: equality filters,
// relations to expand, sort, and pagination. Built fresh per request from
// caller input plus the server-injected tenant filter, and consumed exactly
// once by the builder.
type Spec struct {
	Filters   map[string]any
	Relations []string
	SortBy    string
	SortDesc  bool
	Page      int
	PageSize  int
}

// normalize clamps pagination to sane bounds: page >= 1, page size in
// [1, MaxPageSize] with the default when absent or non-positive.
func (s *Spec) normalize() {
	if s.Page < 1 {
		s.Page = DefaultPage
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > MaxPageSize {
		s.PageSize = MaxPageSize
	}
}

func (s *Spec) offset() int {
	return (s.Page - 1) * s.PageSize
}

// SpecFromRequest builds a Spec from a list request's query string. Filter
// values are read for every name the contract declares filterable;
// "sortBy" accepts a "-" prefix for descending order; "page" and
// "pageSize" take the documented defaults when absent or malformed.
//
// The tenant filter is NOT applied here; callers pass the returned spec's
// Filters through tenant.ApplyScope before executing.
func SpecFromRequest(r *http.Request, c *Contract) *Spec {
	q := r.URL.Query()

	spec := &Spec{
		Filters: make(map[string]any),
		Page:    queryInt(q.Get("page"), DefaultPage),
	}
	spec.PageSize = queryInt(q.Get("pageSize"), DefaultPageSize)

	for name := range c.FilterColumns {
		if v := q.Get(name); v != "" {
			spec.Filters[name] = v
		}
	}

	if sortBy := q.Get("sortBy"); sortBy != "" {
		if strings.HasPrefix(sortBy, "-") {
			spec.SortBy = strings.TrimPrefix(sortBy, "-")
			spec.SortDesc = true
		} else {
			spec.SortBy = sortBy
		}
	}

	for _, rel := range strings.Split(q.Get("expand"), ",") {
		if rel = strings.TrimSpace(rel); rel != "" {
			spec.Relations = append(spec.Relations, rel)
		}
	}

	return spec
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
