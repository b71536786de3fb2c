// Package entity holds the state shared by every domain entity: identity,
// timestamps and the notification collecting its validation errors.
package entity

import (
	"time"

	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/notification"
)

// Serializer is implemented by anything that renders itself as a JSON-ready
// map.
type Serializer interface {
	ToJSON() map[string]any
}

// Entity is the contract every concrete entity fulfils.
type Entity interface {
	Serializer
	EntityID() identity.ID
}

type Clock func() time.Time

// Props restores an existing entity. Zero fields are filled in by NewBase.
type Props struct {
	ID        identity.ID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Option func(*Base)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(clock Clock) Option {
	return func(b *Base) {
		b.now = clock
	}
}

// Base is embedded by concrete entities.
type Base struct {
	id           identity.ID
	createdAt    time.Time
	updatedAt    time.Time
	notification *notification.Notification
	now          Clock
}

func NewBase(props Props, opts ...Option) Base {
	b := Base{
		id:           props.ID,
		createdAt:    props.CreatedAt,
		updatedAt:    props.UpdatedAt,
		notification: notification.New(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}

	if b.id.IsZero() {
		b.id = identity.Generate()
	}
	now := b.now()
	if b.createdAt.IsZero() {
		b.createdAt = now
	}
	if b.updatedAt.IsZero() {
		b.updatedAt = now
	}
	return b
}

func (b *Base) ID() identity.ID {
	return b.id
}

func (b *Base) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Base) UpdatedAt() time.Time {
	return b.updatedAt
}

// Notification returns the errors collected for this entity.
func (b *Base) Notification() *notification.Notification {
	return b.notification
}

// UseClock replaces the time source of an existing entity, such as one
// restored from storage.
func (b *Base) UseClock(clock Clock) {
	b.now = clock
}

// Touch moves UpdatedAt to the current time. Entities call it after a
// mutation.
func (b *Base) Touch() {
	b.updatedAt = b.now()
}
