package person

import (
	"encoding/json"
	"time"

	"github.com/baseplate/persons/internal/core/entity"
	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/validation"
)

type Type string

const (
	TypeIndividual Type = "física"
	TypeCompany    Type = "jurídica"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
)

const (
	FieldID        = "person_id"
	FieldName      = "name"
	FieldType      = "person_type"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

var stateSchema = validation.MustJSONSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		FieldID:   map[string]any{"type": "string", "format": "uuid"},
		FieldName: map[string]any{"type": "string", "minLength": MinNameLength, "maxLength": MaxNameLength},
		FieldType: map[string]any{"type": "string", "enum": []any{string(TypeIndividual), string(TypeCompany)}},
		FieldCreatedAt: map[string]any{"type": "string", "format": "date-time"},
		FieldUpdatedAt: map[string]any{"type": "string", "format": "date-time"},
	},
	"required": []string{FieldID, FieldName, FieldType, FieldCreatedAt, FieldUpdatedAt},
},
	validation.WithMessage(FieldName, "required", "Invalid input: expected string, received undefined"),
	validation.WithMessage(FieldName, "invalid_type", "Invalid input: expected string"),
	validation.WithMessage(FieldName, "string_gte", "Too small: expected string to have >=2 characters"),
	validation.WithMessage(FieldName, "string_lte", "Too big: expected string to have <=100 characters"),
	validation.WithMessage(FieldType, "enum", `Invalid option: expected one of "física"|"jurídica"`),
	validation.WithMessage(FieldType, "required", `Invalid option: expected one of "física"|"jurídica"`),
	validation.WithMessage(FieldID, "format", "Invalid UUID"),
)

// NewValidator returns a validator for the serialized state of a person.
func NewValidator() *validation.Adapter[map[string]any] {
	return validation.NewAdapter[map[string]any](stateSchema)
}

// Props creates or restores a person. Zero ID and timestamps are generated.
type Props struct {
	ID        identity.ID
	Name      string
	Type      Type
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Person never fails to construct; invalid state is reported through its
// notification.
type Person struct {
	entity.Base
	name       string
	personType Type
}

var _ entity.Entity = (*Person)(nil)

func New(props Props, opts ...entity.Option) *Person {
	p := &Person{
		Base: entity.NewBase(entity.Props{
			ID:        props.ID,
			CreatedAt: props.CreatedAt,
			UpdatedAt: props.UpdatedAt,
		}, opts...),
		name:       props.Name,
		personType: props.Type,
	}
	p.validate()
	return p
}

func Create(name string, personType Type, opts ...entity.Option) *Person {
	return New(Props{Name: name, Type: personType}, opts...)
}

func (p *Person) EntityID() identity.ID {
	return p.ID()
}

func (p *Person) Name() string {
	return p.name
}

func (p *Person) Type() Type {
	return p.personType
}

// ChangeName replaces the name and revalidates it. It reports whether the new
// name is valid.
func (p *Person) ChangeName(name string) bool {
	p.name = name
	p.Touch()
	return p.revalidate(FieldName)
}

// ChangeType replaces the person type and revalidates it.
func (p *Person) ChangeType(personType Type) bool {
	p.personType = personType
	p.Touch()
	return p.revalidate(FieldType)
}

func (p *Person) revalidate(field string) bool {
	p.Notification().SetError(field)
	return p.validate(field)
}

func (p *Person) validate(fields ...string) bool {
	return NewValidator().Validate(p.Notification(), p.ToJSON(), fields...)
}

func (p *Person) ToJSON() map[string]any {
	return map[string]any{
		FieldID:        p.ID().Value(),
		FieldName:      p.name,
		FieldType:      string(p.personType),
		FieldCreatedAt: p.CreatedAt(),
		FieldUpdatedAt: p.UpdatedAt(),
	}
}

func (p *Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToJSON())
}
