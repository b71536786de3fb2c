package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/baseplate/persons/internal/core/entity"
	"github.com/baseplate/persons/internal/core/valueobject"
)

const (
	MinResultPerPage = 1
	MaxResultPerPage = 1000
)

var ErrItemsExceedPage = errors.New("items exceed page capacity")

type ResultProps[T entity.Serializer] struct {
	Items       []T
	Total       int
	CurrentPage int
	PerPage     int
}

// Result is one page of a search along with its pagination metadata.
type Result[T entity.Serializer] struct {
	items       []T
	total       int
	currentPage int
	perPage     int
	lastPage    int
}

// Range is the 1-based position of a page's items within the whole result.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// NewResult clamps the pagination metadata into range and fails with
// ErrItemsExceedPage when props.Items cannot fit the resulting page.
func NewResult[T entity.Serializer](props ResultProps[T]) (*Result[T], error) {
	total := max(0, props.Total)
	perPage := min(max(props.PerPage, MinResultPerPage), MaxResultPerPage)

	lastPage := PageCount(total, perPage)
	currentPage := min(max(props.CurrentPage, 1), lastPage)

	capacity := perPage
	if currentPage == lastPage && total%perPage != 0 {
		capacity = total % perPage
	}
	if len(props.Items) > capacity {
		return nil, fmt.Errorf("%w: %d items, at most %d expected on page %d",
			ErrItemsExceedPage, len(props.Items), capacity, currentPage)
	}

	items := slices.Clone(props.Items)
	if items == nil {
		items = []T{}
	}

	return &Result[T]{
		items:       items,
		total:       total,
		currentPage: currentPage,
		perPage:     perPage,
		lastPage:    lastPage,
	}, nil
}

// PageCount is the number of pages of perPage items needed for total items,
// never less than one. perPage must be positive.
func PageCount(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}

// Empty returns a result without items. perPage defaults to MaxResultPerPage.
func Empty[T entity.Serializer](perPage ...int) *Result[T] {
	pp := MaxResultPerPage
	if len(perPage) > 0 {
		pp = perPage[0]
	}

	r, _ := NewResult(ResultProps[T]{CurrentPage: 1, PerPage: pp})
	return r
}

// SinglePage wraps items as the only page of a result.
func SinglePage[T entity.Serializer](items []T) (*Result[T], error) {
	return NewResult(ResultProps[T]{
		Items:       items,
		Total:       len(items),
		CurrentPage: 1,
		PerPage:     max(len(items), 1),
	})
}

func (r *Result[T]) Items() []T {
	return slices.Clone(r.items)
}

func (r *Result[T]) Total() int {
	return r.total
}

func (r *Result[T]) CurrentPage() int {
	return r.currentPage
}

func (r *Result[T]) PerPage() int {
	return r.perPage
}

func (r *Result[T]) LastPage() int {
	return r.lastPage
}

func (r *Result[T]) HasNextPage() bool {
	return r.currentPage < r.lastPage
}

func (r *Result[T]) HasPreviousPage() bool {
	return r.currentPage > 1
}

// NextPage returns the following page number, if any.
func (r *Result[T]) NextPage() (int, bool) {
	if !r.HasNextPage() {
		return 0, false
	}
	return r.currentPage + 1, true
}

// PreviousPage returns the preceding page number, if any.
func (r *Result[T]) PreviousPage() (int, bool) {
	if !r.HasPreviousPage() {
		return 0, false
	}
	return r.currentPage - 1, true
}

// ItemsRange is {0, 0} for an empty result.
func (r *Result[T]) ItemsRange() Range {
	if r.total == 0 {
		return Range{}
	}

	from := (r.currentPage-1)*r.perPage + 1
	to := min(from+len(r.items)-1, r.total)
	return Range{From: from, To: to}
}

// ToJSON renders the result. With serialize set every item is replaced by its
// own ToJSON output, otherwise items are passed through as they are.
func (r *Result[T]) ToJSON(serialize bool) map[string]any {
	var items any = r.Items()
	if serialize {
		out := make([]map[string]any, len(r.items))
		for i, item := range r.items {
			out[i] = item.ToJSON()
		}
		items = out
	}

	return map[string]any{
		"items":        items,
		"total":        r.total,
		"current_page": r.currentPage,
		"per_page":     r.perPage,
		"last_page":    r.lastPage,
	}
}

func (r *Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToJSON(true))
}

func (r *Result[T]) Equals(other any) bool {
	return valueobject.Equals(r, other)
}
