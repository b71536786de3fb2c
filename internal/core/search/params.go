// Package search describes a paginated query and the page it produced.
package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/baseplate/persons/internal/core/valueobject"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100
	MaxPage        = 1000
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Props is the raw input of a search. Numeric fields accept numbers, numeric
// strings and booleans; nil means "not provided".
type Props[F any] struct {
	Page    any
	PerPage any
	Sort    any
	SortDir any
	Filter  *F
}

// Params is a normalized, immutable search request.
type Params[F any] struct {
	page    int
	perPage int
	sort    string
	sortDir SortDirection
	filter  *F
}

func NewParams[F any](props Props[F]) Params[F] {
	p := Params[F]{
		page:    normalizePage(props.Page),
		perPage: normalizePerPage(props.PerPage),
		sort:    normalizeSort(props.Sort),
	}
	if p.sort != "" {
		p.sortDir = normalizeSortDir(props.SortDir)
	}
	p.filter = normalizeFilter(props.Filter)
	return p
}

func normalizePage(raw any) int {
	page := toNumber(raw)
	if !isWhole(page) || page <= 0 {
		return DefaultPage
	}
	return int(math.Min(page, MaxPage))
}

func normalizePerPage(raw any) int {
	if b, ok := raw.(bool); ok && b {
		return DefaultPerPage
	}

	perPage := toNumber(raw)
	if !isWhole(perPage) || perPage <= 0 {
		return DefaultPerPage
	}
	return int(math.Min(math.Max(perPage, 1), MaxPerPage))
}

func normalizeSort(raw any) string {
	switch s := raw.(type) {
	case nil:
		return ""
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	default:
		return fmt.Sprint(raw)
	}
}

func normalizeSortDir(raw any) SortDirection {
	var dir string
	switch d := raw.(type) {
	case SortDirection:
		dir = string(d)
	case string:
		dir = d
	case nil:
	default:
		dir = fmt.Sprint(d)
	}

	switch SortDirection(strings.ToLower(dir)) {
	case SortDesc:
		return SortDesc
	default:
		return SortAsc
	}
}

func normalizeFilter[F any](filter *F) *F {
	if filter == nil {
		return nil
	}
	if s, ok := any(*filter).(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	f := *filter
	return &f
}

func (p Params[F]) Page() int {
	return p.page
}

func (p Params[F]) PerPage() int {
	return p.perPage
}

// Sort returns the sort field, or "" when unsorted.
func (p Params[F]) Sort() string {
	return p.sort
}

// SortDir is empty whenever Sort is.
func (p Params[F]) SortDir() SortDirection {
	return p.sortDir
}

// Filter returns the filter and whether one was set.
func (p Params[F]) Filter() (F, bool) {
	if p.filter == nil {
		var zero F
		return zero, false
	}
	return *p.filter, true
}

// Offset is the number of items that precede the requested page.
func (p Params[F]) Offset() int {
	return (p.page - 1) * p.perPage
}

// With returns a copy where every non-nil change replaces the current value.
// The result is normalized again.
func (p Params[F]) With(changes Props[F]) Params[F] {
	next := Props[F]{
		Page:    p.page,
		PerPage: p.perPage,
		Filter:  p.filter,
	}
	if p.sort != "" {
		next.Sort = p.sort
		next.SortDir = p.sortDir
	}

	if changes.Page != nil {
		next.Page = changes.Page
	}
	if changes.PerPage != nil {
		next.PerPage = changes.PerPage
	}
	if changes.Sort != nil {
		next.Sort = changes.Sort
	}
	if changes.SortDir != nil {
		next.SortDir = changes.SortDir
	}
	if changes.Filter != nil {
		next.Filter = changes.Filter
	}
	return NewParams(next)
}

func (p Params[F]) Equals(other any) bool {
	return valueobject.Equals(p, other)
}
