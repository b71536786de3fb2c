package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_Empty(t *testing.T) {
	n := New()

	assert.False(t, n.HasErrors(""))
	assert.Equal(t, []string{}, n.GetErrors(""))
	assert.Equal(t, map[string]any{}, n.ErrorsAsObject())
	assert.Equal(t, []any{}, n.ToJSON())
}

func TestAddError(t *testing.T) {
	t.Run("without field uses the message as key", func(t *testing.T) {
		n := New()
		n.AddError("Error 1", "")

		assert.True(t, n.HasErrors(""))
		assert.True(t, n.HasErrors("Error 1"))
		assert.Equal(t, []string{"Error 1"}, n.GetErrors(""))
		assert.Equal(t, []string{}, n.GetErrors("field1"))
	})

	t.Run("with field", func(t *testing.T) {
		n := New()
		n.AddError("Error 1", "field1")

		assert.True(t, n.HasErrors("field1"))
		assert.Equal(t, []string{"Error 1"}, n.GetErrors("field1"))
		assert.Equal(t, []string{"Error 1"}, n.GetErrors(""))
	})

	t.Run("is idempotent for identical pairs", func(t *testing.T) {
		once := New()
		once.AddError("Name is required", "name")

		twice := New()
		twice.AddError("Name is required", "name")
		twice.AddError("Name is required", "name")

		assert.Equal(t, once.GetErrors("name"), twice.GetErrors("name"))
		assert.Len(t, twice.GetErrors("name"), 1)
	})

	t.Run("keeps distinct messages in order", func(t *testing.T) {
		n := New()
		n.AddError("Name is required", "name")
		n.AddError("Name must be at least 3 characters", "name")

		assert.Equal(t, []string{
			"Name is required",
			"Name must be at least 3 characters",
		}, n.GetErrors("name"))
	})

	t.Run("identical global errors are deduplicated", func(t *testing.T) {
		n := New()
		n.AddError("Something broke", "")
		n.AddError("Something broke", "")
		n.AddError("Something else broke", "")

		assert.Equal(t, []string{"Something broke", "Something else broke"}, n.GetErrors(""))
	})
}

func TestSetError(t *testing.T) {
	t.Run("global error adds a new key next to existing ones", func(t *testing.T) {
		n := New()
		n.AddError("Old general error", "")
		n.SetError("", "New general error")

		assert.Contains(t, n.GetErrors(""), "Old general error")
		assert.Contains(t, n.GetErrors(""), "New general error")
	})

	t.Run("several global errors get their own keys", func(t *testing.T) {
		n := New()
		n.SetError("", "Error A", "Error B")

		assert.Equal(t, []string{"Error A", "Error B"}, n.GetErrors(""))
		assert.Equal(t, []string{"Error A"}, n.GetErrors("Error A"))
		assert.Equal(t, []string{"Error B"}, n.GetErrors("Error B"))
	})

	t.Run("field errors are replaced", func(t *testing.T) {
		n := New()
		n.AddError("Old name error 1", "name")
		n.AddError("Old name error 2", "name")
		n.SetError("name", "New name error")

		assert.Equal(t, []string{"New name error"}, n.GetErrors("name"))
		assert.Len(t, n.GetErrors(""), 1)
	})

	t.Run("field errors are replaced by a list", func(t *testing.T) {
		n := New()
		n.AddError("Old email error 1", "email")
		n.SetError("email", "New email error 1", "New email error 2")

		assert.Equal(t, []string{"New email error 1", "New email error 2"}, n.GetErrors("email"))
	})

	t.Run("replacing keeps the key position", func(t *testing.T) {
		n := New()
		n.AddError("first", "a")
		n.AddError("second", "b")
		n.SetError("a", "replaced")

		assert.Equal(t, []string{"replaced", "second"}, n.GetErrors(""))
	})

	t.Run("no messages clears the field", func(t *testing.T) {
		n := New()
		n.AddError("first", "a")
		n.AddError("second", "b")
		n.SetError("a")

		assert.False(t, n.HasErrors("a"))
		assert.Equal(t, []string{"b"}, n.Fields())
	})

	t.Run("caller slice is not aliased", func(t *testing.T) {
		n := New()
		msgs := []string{"one"}
		n.SetError("f", msgs...)
		msgs[0] = "mutated"

		assert.Equal(t, []string{"one"}, n.GetErrors("f"))
	})
}

func TestGetErrors(t *testing.T) {
	n := New()
	n.AddError("General error", "")
	n.AddError("Name required", "name")
	n.AddError("Email invalid", "email")

	assert.Equal(t, []string{"General error", "Name required", "Email invalid"}, n.GetErrors(""))
	assert.Equal(t, []string{"Name required"}, n.GetErrors("name"))
	assert.Equal(t, []string{"Email invalid"}, n.GetErrors("email"))
	assert.Equal(t, []string{}, n.GetErrors("nonExistentField"))

	n.GetErrors("name")[0] = "mutated"
	assert.Equal(t, []string{"Name required"}, n.GetErrors("name"))
}

func TestErrorsAsObject(t *testing.T) {
	t.Run("flat keys", func(t *testing.T) {
		n := New()
		n.AddError("Invalid name", "name")
		n.AddError("Invalid email", "email")
		n.AddError("General issue", "")

		assert.Equal(t, map[string]any{
			"name":          []string{"Invalid name"},
			"email":         []string{"Invalid email"},
			"General issue": []string{"General issue"},
		}, n.ErrorsAsObject())
	})

	t.Run("nested paths round-trip", func(t *testing.T) {
		n := New()
		n.AddError("too short", "a.b")

		obj := n.ErrorsAsObject()
		a, ok := obj["a"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []string{"too short"}, a["b"])
	})

	t.Run("deep nesting with siblings", func(t *testing.T) {
		n := New()
		n.AddError("Rua é obrigatória", "address.street")
		n.AddError("CEP inválido", "address.zip")
		n.AddError("Nome é obrigatório", "name")

		assert.Equal(t, map[string]any{
			"address": map[string]any{
				"street": []string{"Rua é obrigatória"},
				"zip":    []string{"CEP inválido"},
			},
			"name": []string{"Nome é obrigatório"},
		}, n.ErrorsAsObject())
	})

	t.Run("leaf is replaced by an object when a deeper path follows", func(t *testing.T) {
		n := New()
		n.AddError("address invalid", "address")
		n.AddError("street required", "address.street")

		assert.Equal(t, map[string]any{
			"address": map[string]any{"street": []string{"street required"}},
		}, n.ErrorsAsObject())
	})

	t.Run("object is replaced by a leaf when a shorter path follows", func(t *testing.T) {
		n := New()
		n.AddError("street required", "address.street")
		n.AddError("address invalid", "address")

		assert.Equal(t, map[string]any{
			"address": []string{"address invalid"},
		}, n.ErrorsAsObject())
	})

	t.Run("global message containing a dot is split", func(t *testing.T) {
		n := New()
		n.AddError("v1.2", "")

		assert.Equal(t, map[string]any{
			"v1": map[string]any{"2": []string{"v1.2"}},
		}, n.ErrorsAsObject())
	})
}

func TestCopyErrors(t *testing.T) {
	t.Run("copies field and global errors", func(t *testing.T) {
		source := New()
		source.AddError("Error from source", "field1")
		source.AddError("Another source error", "")

		n := New()
		n.CopyErrors(source)

		assert.True(t, n.HasErrors(""))
		assert.Equal(t, []string{"Error from source"}, n.GetErrors("field1"))
		assert.Contains(t, n.GetErrors(""), "Another source error")
	})

	t.Run("overwrites shared paths and keeps destination-only paths", func(t *testing.T) {
		n := New()
		n.AddError("Existing error", "fieldA")
		n.AddError("Another existing error", "fieldA")
		n.AddError("Existing general", "")

		source := New()
		source.AddError("New error", "fieldB")
		source.AddError("Replacement", "fieldA")

		n.CopyErrors(source)

		assert.Equal(t, []string{"Replacement"}, n.GetErrors("fieldA"))
		assert.Equal(t, []string{"New error"}, n.GetErrors("fieldB"))
		assert.Contains(t, n.GetErrors(""), "Existing general")
	})

	t.Run("nested paths are copied as dot-joined keys", func(t *testing.T) {
		source := New()
		source.AddError("street required", "address.street")
		source.AddError("zip invalid", "address.zip")

		n := New()
		n.AddError("old street", "address.street")
		n.AddError("kept city", "address.city")
		n.CopyErrors(source)

		assert.Equal(t, []string{"street required"}, n.GetErrors("address.street"))
		assert.Equal(t, []string{"zip invalid"}, n.GetErrors("address.zip"))
		assert.Equal(t, []string{"kept city"}, n.GetErrors("address.city"))
	})

	t.Run("nil source is ignored", func(t *testing.T) {
		n := New()
		n.AddError("kept", "f")
		n.CopyErrors(nil)

		assert.Equal(t, []string{"kept"}, n.GetErrors(""))
	})
}

func TestToJSON(t *testing.T) {
	t.Run("mixes bare strings and objects in insertion order", func(t *testing.T) {
		n := New()
		n.AddError("Password too short", "password")
		n.AddError("User not found", "")

		assert.Equal(t, []any{
			map[string][]string{"password": {"Password too short"}},
			"User not found",
		}, n.ToJSON())
	})

	t.Run("marshals to the wire contract", func(t *testing.T) {
		n := New()
		n.AddError("Password too short", "password")
		n.SetError("", "User not found")

		data, err := json.Marshal(n)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"password":["Password too short"]},"User not found"]`, string(data))
	})

	t.Run("field error on a global key becomes an object", func(t *testing.T) {
		n := New()
		n.AddError("dup", "")
		n.AddError("other", "dup")

		assert.Equal(t, []any{map[string][]string{"dup": {"dup", "other"}}}, n.ToJSON())
	})
}
