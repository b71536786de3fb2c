package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/person"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newPersonEngine() *gin.Engine {
	h := NewPersonHandler(person.NewService(person.NewMemoryRepository()))

	r := gin.New()
	r.POST("/persons", h.Create)
	r.GET("/persons", h.Search)
	r.GET("/persons/:id", h.Get)
	r.PATCH("/persons/:id", h.Update)
	r.DELETE("/persons/:id", h.Delete)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func create(t *testing.T, r *gin.Engine, name string, personType person.Type) string {
	t.Helper()
	w, body := do(t, r, http.MethodPost, "/persons", map[string]any{"name": name, "person_type": personType})
	require.Equal(t, http.StatusCreated, w.Code)
	return body[person.FieldID].(string)
}

func TestPersonHandler_Create(t *testing.T) {
	r := newPersonEngine()

	t.Run("created", func(t *testing.T) {
		w, body := do(t, r, http.MethodPost, "/persons", map[string]any{"name": "John Doe", "person_type": "física"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "John Doe", body[person.FieldName])
		assert.Equal(t, "física", body[person.FieldType])
		_, err := identity.Create(body[person.FieldID].(string))
		assert.NoError(t, err)
	})

	t.Run("request rules are reported per field", func(t *testing.T) {
		w, body := do(t, r, http.MethodPost, "/persons", map[string]any{"name": "J", "person_type": "other"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "validation failed", body["error"])
		fields := body["fields"].(map[string]any)
		assert.Equal(t, []any{"name must be at least 2 characters"}, fields["name"])
		assert.Equal(t, []any{"person_type must be one of [física jurídica]"}, fields["person_type"])
		assert.Len(t, body["details"], 2)
	})

	t.Run("missing fields", func(t *testing.T) {
		w, body := do(t, r, http.MethodPost, "/persons", map[string]any{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		fields := body["fields"].(map[string]any)
		assert.Equal(t, []any{"name is required"}, fields["name"])
		assert.Equal(t, []any{"person_type is required"}, fields["person_type"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/persons", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPersonHandler_Get(t *testing.T) {
	r := newPersonEngine()
	id := create(t, r, "ACME Ltda", person.TypeCompany)

	t.Run("found", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons/"+id, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ACME Ltda", body[person.FieldName])
	})

	t.Run("not found", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons/"+identity.Generate().Value(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, person.ErrNotFound.Error(), body["error"])
	})

	t.Run("invalid id", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons/123", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid person id", body["error"])
	})
}

func TestPersonHandler_Update(t *testing.T) {
	r := newPersonEngine()
	id := create(t, r, "John Doe", person.TypeIndividual)

	t.Run("partial update", func(t *testing.T) {
		w, body := do(t, r, http.MethodPatch, "/persons/"+id, map[string]any{"name": "Jane Doe"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Jane Doe", body[person.FieldName])
		assert.Equal(t, "física", body[person.FieldType])
	})

	t.Run("invalid value", func(t *testing.T) {
		w, body := do(t, r, http.MethodPatch, "/persons/"+id, map[string]any{"name": "J"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, body["fields"], "name")
	})

	t.Run("unknown person", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPatch, "/persons/"+identity.Generate().Value(), map[string]any{"name": "Jane Doe"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPersonHandler_Delete(t *testing.T) {
	r := newPersonEngine()
	id := create(t, r, "John Doe", person.TypeIndividual)

	w, _ := do(t, r, http.MethodDelete, "/persons/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/persons/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPersonHandler_Search(t *testing.T) {
	r := newPersonEngine()
	for _, name := range []string{"Ana", "Bruno", "Carla", "Mariana", "Diego"} {
		create(t, r, name, person.TypeIndividual)
	}

	t.Run("paged and sorted", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons?page=2&per_page=2&sort=name&sort_dir=desc", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(5), body["total"])
		assert.Equal(t, float64(2), body["current_page"])
		assert.Equal(t, float64(3), body["last_page"])
		assert.Equal(t, float64(3), body["next_page"])
		assert.Equal(t, float64(1), body["previous_page"])
		assert.Equal(t, float64(3), body["from"])
		assert.Equal(t, float64(4), body["to"])

		items := body["items"].([]any)
		require.Len(t, items, 2)
		assert.Equal(t, "Carla", items[0].(map[string]any)[person.FieldName])
		assert.Equal(t, "Bruno", items[1].(map[string]any)[person.FieldName])
	})

	t.Run("filter", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons?filter=ana&sort=name", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), body["total"])
		assert.Nil(t, body["next_page"])
		assert.Nil(t, body["previous_page"])
	})

	t.Run("malformed paging falls back to defaults", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/persons?page=abc&per_page=-3", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), body["current_page"])
		assert.Equal(t, float64(15), body["per_page"])
	})
}
