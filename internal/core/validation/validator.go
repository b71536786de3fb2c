package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baseplate/persons/internal/core/notification"
)

// RootPath is the key used for issues that are not tied to a field.
const RootPath = "root"

// Issue is a single failure reported by a schema.
type Issue struct {
	Path    []string
	Message string
}

// Schema evaluates data and reports its issues. When fields is non-empty
// only those top-level fields are checked. The returned error is reserved for
// failures of the evaluation itself, never for invalid data.
type Schema interface {
	Evaluate(data any, fields []string) ([]Issue, error)
}

// Validator is implemented by anything able to validate a T into a
// notification.
type Validator[T any] interface {
	Validate(n *notification.Notification, data T, fields ...string) bool
}

// AddIssues records issues on n. Blank messages are dropped and an empty path
// is recorded under RootPath.
func AddIssues(n *notification.Notification, issues []Issue) {
	for _, issue := range issues {
		if strings.TrimSpace(issue.Message) == "" {
			continue
		}

		path := RootPath
		if len(issue.Path) > 0 {
			path = strings.Join(issue.Path, ".")
		}
		n.AddError(issue.Message, path)
	}
}

// Adapter binds a Schema to the notification contract.
type Adapter[T any] struct {
	schema Schema
	errors map[string]any
}

func NewAdapter[T any](schema Schema) *Adapter[T] {
	return &Adapter[T]{schema: schema}
}

// Validate evaluates data, optionally restricted to fields, and records every
// issue on n. It returns true when nothing was reported.
func (a *Adapter[T]) Validate(n *notification.Notification, data T, fields ...string) bool {
	issues, err := a.schema.Evaluate(data, fields)
	if err != nil {
		issues = []Issue{{Message: err.Error()}}
	}

	if len(issues) == 0 {
		a.errors = nil
		return true
	}

	AddIssues(n, issues)
	a.errors = n.ErrorsAsObject()
	return false
}

// Errors returns the nested errors captured by the last failed Validate, or
// nil when the last run succeeded.
func (a *Adapter[T]) Errors() map[string]any {
	return a.errors
}

// Error carries a notification with errors across an error return.
type Error struct {
	Notification *notification.Notification
}

func NewError(n *notification.Notification) *Error {
	return &Error{Notification: n}
}

func (e *Error) Error() string {
	if e.Notification == nil {
		return "validation failed"
	}

	var msgs []string
	for _, field := range e.Notification.Fields() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, strings.Join(e.Notification.GetErrors(field), ", ")))
	}
	return strings.Join(msgs, "; ")
}

func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

func GetNotification(err error) *notification.Notification {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Notification
	}
	return nil
}
