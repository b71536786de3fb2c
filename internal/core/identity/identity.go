// Package identity provides the validated unique identifier carried by every
// entity.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/baseplate/persons/internal/core/valueobject"
)

const (
	canonicalLength = 36
	maxToken        = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

// InvalidIdentityError is returned when a token does not have the shape of a
// UUID.
type InvalidIdentityError struct {
	Token string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid identity: %q", e.Token)
}

// IsInvalidIdentity reports whether err is (or wraps) an InvalidIdentityError.
func IsInvalidIdentity(err error) bool {
	var ie *InvalidIdentityError
	return errors.As(err, &ie)
}

// ID is an immutable identity token. The zero value is not a valid identity
// and is used by constructors to mean "generate one".
type ID struct {
	value string
}

// Generate returns a new random (v4) identity.
func Generate() ID {
	return ID{value: uuid.NewString()}
}

// Create validates token and wraps it.
func Create(token string) (ID, error) {
	if !validToken(token) {
		return ID{}, &InvalidIdentityError{Token: token}
	}
	return ID{value: token}, nil
}

// MustCreate is like Create but panics on an invalid token. Intended for
// fixtures and constants.
func MustCreate(token string) ID {
	id, err := Create(token)
	if err != nil {
		panic(err)
	}
	return id
}

func validToken(token string) bool {
	if len(token) != canonicalLength {
		return false
	}

	parsed, err := uuid.Parse(token)
	if err != nil {
		return false
	}

	if parsed == uuid.Nil || strings.EqualFold(token, maxToken) {
		return true
	}

	v := parsed.Version()
	return v >= 1 && v <= 8 && parsed.Variant() == uuid.RFC4122
}

// Value returns the raw token.
func (i ID) Value() string {
	return i.value
}

func (i ID) String() string {
	return i.value
}

// IsZero reports whether the identity was never assigned.
func (i ID) IsZero() bool {
	return i.value == ""
}

// Equals reports structural equality with another value object.
func (i ID) Equals(other any) bool {
	return valueobject.Equals(i, other)
}

func (i ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

func (i *ID) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	id, err := Create(token)
	if err != nil {
		return err
	}
	*i = id
	return nil
}
