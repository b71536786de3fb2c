// Package valueobject provides structural equality for immutable value types.
package valueobject

import "reflect"

// Equals reports whether a and b are the same concrete type and every stored
// field is deep-equal. A nil operand, including a typed nil pointer, is never
// equal to anything.
func Equals(a, b any) bool {
	if a == nil || b == nil {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	if va.Kind() == reflect.Pointer {
		if va.IsNil() || vb.IsNil() {
			return false
		}
		if va.Pointer() == vb.Pointer() {
			return true
		}
	}

	return reflect.DeepEqual(a, b)
}
