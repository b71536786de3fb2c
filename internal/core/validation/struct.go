package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructSchema evaluates `validate` struct tags. Issue paths use the json
// names of the fields.
type StructSchema struct {
	v *validator.Validate
}

func NewStructSchema() *StructSchema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &StructSchema{v: v}
}

// RegisterValidation registers a custom validation tag.
func (s *StructSchema) RegisterValidation(tag string, fn validator.Func) error {
	return s.v.RegisterValidation(tag, fn)
}

func (s *StructSchema) Evaluate(data any, fields []string) ([]Issue, error) {
	var err error
	if len(fields) > 0 {
		err = s.v.StructPartial(data, goFieldNames(data, fields)...)
	} else {
		err = s.v.Struct(data)
	}
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Path:    fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return issues, nil
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// goFieldNames maps json names to the Go field names StructPartial expects.
// Unknown names are passed through untouched.
func goFieldNames(data any, fields []string) []string {
	t := reflect.TypeOf(data)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fields
	}

	byJSON := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := jsonName(f); name != "" {
			byJSON[name] = f.Name
		}
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if goName, ok := byJSON[f]; ok {
			names = append(names, goName)
			continue
		}
		names = append(names, f)
	}
	return names
}

// fieldPath drops the leading struct name from a namespace such as
// "CreatePersonRequest.name".
func fieldPath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	default:
		return fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag())
	}
}
