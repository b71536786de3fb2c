package person

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/search"
)

type record struct {
	id         identity.ID
	name       string
	personType Type
	createdAt  time.Time
	updatedAt  time.Time
}

func newRecord(p *Person) record {
	return record{
		id:         p.ID(),
		name:       p.Name(),
		personType: p.Type(),
		createdAt:  p.CreatedAt(),
		updatedAt:  p.UpdatedAt(),
	}
}

func (r record) person() *Person {
	return New(Props{
		ID:        r.id,
		Name:      r.name,
		Type:      r.personType,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	})
}

// MemoryRepository keeps persons in process. Stored values are copies, so
// callers never share a *Person with the store.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]record)}
}

func (r *MemoryRepository) Insert(_ context.Context, p *Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[p.ID().Value()]; exists {
		return ErrAlreadyExists
	}
	r.records[p.ID().Value()] = newRecord(p)
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, p *Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[p.ID().Value()]
	if !exists {
		return ErrNotFound
	}
	next := newRecord(p)
	next.createdAt = current.createdAt
	r.records[p.ID().Value()] = next
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id identity.ID) (*Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id.Value()]
	if !exists {
		return nil, nil
	}
	return rec.person(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id identity.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id.Value())
	return nil
}

func (r *MemoryRepository) Search(_ context.Context, params SearchParams) (*SearchResult, error) {
	r.mu.RLock()
	matches := make([]record, 0, len(r.records))
	filter, hasFilter := params.Filter()
	filter = strings.ToLower(filter)
	for _, rec := range r.records {
		if hasFilter && !strings.Contains(strings.ToLower(rec.name), filter) {
			continue
		}
		matches = append(matches, rec)
	}
	r.mu.RUnlock()

	sort.Slice(matches, less(matches, params))

	total := len(matches)
	params = clampPage(params, total)

	start := min(params.Offset(), total)
	end := min(start+params.PerPage(), total)

	items := make([]*Person, 0, end-start)
	for _, rec := range matches[start:end] {
		items = append(items, rec.person())
	}

	return search.NewResult(search.ResultProps[*Person]{
		Items:       items,
		Total:       total,
		CurrentPage: params.Page(),
		PerPage:     params.PerPage(),
	})
}

// less mirrors orderClause: whitelisted fields in the requested direction,
// newest first otherwise, ties broken by id.
func less(recs []record, params SearchParams) func(i, j int) bool {
	desc := params.SortDir() == search.SortDesc

	var cmp func(a, b record) int
	switch params.Sort() {
	case FieldName:
		cmp = func(a, b record) int { return strings.Compare(a.name, b.name) }
	case FieldType:
		cmp = func(a, b record) int { return strings.Compare(string(a.personType), string(b.personType)) }
	case FieldCreatedAt:
		cmp = func(a, b record) int { return a.createdAt.Compare(b.createdAt) }
	case FieldUpdatedAt:
		cmp = func(a, b record) int { return a.updatedAt.Compare(b.updatedAt) }
	default:
		desc = true
		cmp = func(a, b record) int { return a.createdAt.Compare(b.createdAt) }
	}

	return func(i, j int) bool {
		c := cmp(recs[i], recs[j])
		if c == 0 {
			return recs[i].id.Value() < recs[j].id.Value()
		}
		if desc {
			return c > 0
		}
		return c < 0
	}
}
