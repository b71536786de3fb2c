package validation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootContext = "(root)"

// JSONSchema evaluates data against a JSON Schema document. The full schema
// is compiled once; field subsets are compiled on demand.
type JSONSchema struct {
	definition map[string]any
	compiled   *gojsonschema.Schema
	messages   map[string]string
}

type JSONSchemaOption func(*JSONSchema)

// WithMessage replaces the library description of errType issues at path
// (dot-joined, e.g. "name") with message.
func WithMessage(path, errType, message string) JSONSchemaOption {
	return func(s *JSONSchema) {
		s.messages[messageKey(path, errType)] = message
	}
}

func NewJSONSchema(definition map[string]any, opts ...JSONSchemaOption) (*JSONSchema, error) {
	compiled, err := compile(definition)
	if err != nil {
		return nil, err
	}

	s := &JSONSchema{
		definition: definition,
		compiled:   compiled,
		messages:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustJSONSchema is like NewJSONSchema but panics when the definition does
// not compile. Meant for package-level schemas.
func MustJSONSchema(definition map[string]any, opts ...JSONSchemaOption) *JSONSchema {
	s, err := NewJSONSchema(definition, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func compile(definition map[string]any) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

func (s *JSONSchema) Evaluate(data any, fields []string) ([]Issue, error) {
	schema := s.compiled
	if len(fields) > 0 {
		var err error
		schema, err = compile(pick(s.definition, fields))
		if err != nil {
			return nil, err
		}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		path := contextPath(desc)
		issues = append(issues, Issue{
			Path:    path,
			Message: s.describe(path, desc),
		})
	}

	// Property iteration inside the library is unordered.
	sort.SliceStable(issues, func(i, j int) bool {
		return strings.Join(issues[i].Path, ".") < strings.Join(issues[j].Path, ".")
	})
	return issues, nil
}

func (s *JSONSchema) describe(path []string, desc gojsonschema.ResultError) string {
	if msg, ok := s.messages[messageKey(strings.Join(path, "."), desc.Type())]; ok {
		return msg
	}
	return desc.Description()
}

func messageKey(path, errType string) string {
	return path + "#" + errType
}

// contextPath turns "(root).address.street" into [address street]. Required
// errors are reported on the parent object, so the missing property is
// appended.
func contextPath(desc gojsonschema.ResultError) []string {
	var path []string
	if ctx := desc.Context(); ctx != nil {
		for _, part := range strings.Split(ctx.String(), ".") {
			if part == "" || part == rootContext {
				continue
			}
			path = append(path, part)
		}
	}

	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok && prop != "" {
			if len(path) == 0 || path[len(path)-1] != prop {
				path = append(path, prop)
			}
		}
	}
	return path
}

// pick narrows an object schema to fields. Extra properties are allowed since
// the data still carries the fields that were left out.
func pick(definition map[string]any, fields []string) map[string]any {
	subset := make(map[string]any, len(definition))
	for k, v := range definition {
		switch k {
		case "additionalProperties":
			continue
		case "properties":
			props, ok := v.(map[string]any)
			if !ok {
				subset[k] = v
				continue
			}
			picked := make(map[string]any, len(fields))
			for _, f := range fields {
				if p, ok := props[f]; ok {
					picked[f] = p
				}
			}
			subset[k] = picked
		case "required":
			if req := pickRequired(v, fields); len(req) > 0 {
				subset[k] = req
			}
		default:
			subset[k] = v
		}
	}
	return subset
}

func pickRequired(v any, fields []string) []any {
	kept := []any{}
	switch req := v.(type) {
	case []string:
		for _, r := range req {
			if slices.Contains(fields, r) {
				kept = append(kept, r)
			}
		}
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok && slices.Contains(fields, name) {
				kept = append(kept, name)
			}
		}
	}
	return kept
}
