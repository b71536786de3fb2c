package search

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNewParams_Defaults(t *testing.T) {
	p := NewParams(Props[string]{})

	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 15, p.PerPage())
	assert.Equal(t, "", p.Sort())
	assert.Equal(t, SortDirection(""), p.SortDir())
	_, ok := p.Filter()
	assert.False(t, ok)
}

func TestNewParams_Page(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
	}{
		{"nil", nil, 1},
		{"zero", 0, 1},
		{"negative", -5, 1},
		{"fraction", 1.5, 1},
		{"NaN", math.NaN(), 1},
		{"infinity", math.Inf(1), 1},
		{"non numeric string", "invalid", 1},
		{"blank string", "  ", 1},
		{"true", true, 1},
		{"false", false, 1},
		{"valid int", 2, 2},
		{"valid float", 3.0, 3},
		{"numeric string", "5", 5},
		{"padded numeric string", " 7 ", 7},
		{"exponent string", "1e2", 100},
		{"hex string", "0x10", 16},
		{"json number", json.Number("4"), 4},
		{"int pointer", ptr(6), 6},
		{"above max", 5000, 1000},
		{"huge", 1e22, 1},
		{"unsupported type", struct{}{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(Props[string]{Page: tt.input})
			assert.Equal(t, tt.expected, p.Page())
		})
	}
}

func TestNewParams_PerPage(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
	}{
		{"nil", nil, 15},
		{"true sentinel", true, 15},
		{"false", false, 15},
		{"zero", 0, 15},
		{"negative", -1, 15},
		{"fraction", 2.5, 15},
		{"string", "fake", 15},
		{"one", 1, 1},
		{"valid", 10, 10},
		{"numeric string", "20", 20},
		{"max", 100, 100},
		{"above max", 101, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(Props[string]{PerPage: tt.input})
			assert.Equal(t, tt.expected, p.PerPage())
		})
	}
}

func TestNewParams_Sort(t *testing.T) {
	tests := []struct {
		name        string
		sort        any
		sortDir     any
		expected    string
		expectedDir SortDirection
	}{
		{"nil sort ignores direction", nil, "desc", "", ""},
		{"empty sort ignores direction", "", "desc", "", ""},
		{"nil string pointer", (*string)(nil), "asc", "", ""},
		{"string", "name", "desc", "name", SortDesc},
		{"upper case direction", "name", "DESC", "name", SortDesc},
		{"typed direction", "name", SortDesc, "name", SortDesc},
		{"missing direction", "name", nil, "name", SortAsc},
		{"invalid direction", "name", "invalid", "name", SortAsc},
		{"non string sort is stringified", 0, "asc", "0", SortAsc},
		{"bool sort is stringified", false, "desc", "false", SortDesc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(Props[string]{Sort: tt.sort, SortDir: tt.sortDir})
			assert.Equal(t, tt.expected, p.Sort())
			assert.Equal(t, tt.expectedDir, p.SortDir())
		})
	}
}

func TestNewParams_Filter(t *testing.T) {
	t.Run("blank string is dropped", func(t *testing.T) {
		for _, f := range []string{"", "   ", "\t"} {
			p := NewParams(Props[string]{Filter: ptr(f)})
			_, ok := p.Filter()
			assert.False(t, ok, "filter %q", f)
		}
	})

	t.Run("string passes through", func(t *testing.T) {
		p := NewParams(Props[string]{Filter: ptr(" john ")})
		f, ok := p.Filter()
		assert.True(t, ok)
		assert.Equal(t, " john ", f)
	})

	t.Run("custom filter passes through", func(t *testing.T) {
		type byType struct{ PersonType string }

		p := NewParams(Props[byType]{Filter: &byType{}})
		f, ok := p.Filter()
		assert.True(t, ok)
		assert.Equal(t, byType{}, f)
	})

	t.Run("caller pointer is not retained", func(t *testing.T) {
		raw := "john"
		p := NewParams(Props[string]{Filter: &raw})
		raw = "mary"

		f, _ := p.Filter()
		assert.Equal(t, "john", f)
	})
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, NewParams(Props[string]{}).Offset())
	assert.Equal(t, 20, NewParams(Props[string]{Page: 3, PerPage: 10}).Offset())
}

func TestParams_With(t *testing.T) {
	t.Run("replaces given values only", func(t *testing.T) {
		original := NewParams(Props[string]{Page: 1, PerPage: 10})
		modified := original.With(Props[string]{Page: 2})

		assert.Equal(t, 1, original.Page())
		assert.Equal(t, 2, modified.Page())
		assert.Equal(t, 10, modified.PerPage())
	})

	t.Run("keeps sort and filter", func(t *testing.T) {
		original := NewParams(Props[string]{Sort: "name", SortDir: "desc", Filter: ptr("jo")})
		modified := original.With(Props[string]{PerPage: 50})

		assert.Equal(t, "name", modified.Sort())
		assert.Equal(t, SortDesc, modified.SortDir())
		f, ok := modified.Filter()
		assert.True(t, ok)
		assert.Equal(t, "jo", f)
	})

	t.Run("changes are normalized", func(t *testing.T) {
		modified := NewParams(Props[string]{}).With(Props[string]{Page: -3, PerPage: 500, Sort: "name", SortDir: "sideways"})

		assert.Equal(t, 1, modified.Page())
		assert.Equal(t, 100, modified.PerPage())
		assert.Equal(t, SortAsc, modified.SortDir())
	})
}

func TestParams_Equals(t *testing.T) {
	a := NewParams(Props[string]{Page: 1, PerPage: 15})
	b := NewParams(Props[string]{Page: 1, PerPage: 15})
	c := NewParams(Props[string]{Page: 2, PerPage: 15})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))

	withFilter := NewParams(Props[string]{Filter: ptr("x")})
	assert.True(t, withFilter.Equals(NewParams(Props[string]{Filter: ptr("x")})))
	assert.False(t, withFilter.Equals(a))
}
