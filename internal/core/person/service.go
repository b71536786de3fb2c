package person

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baseplate/persons/internal/core/entity"
	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/validation"
	"github.com/baseplate/persons/internal/platform/metrics"
)

var (
	ErrNotFound      = errors.New("person not found")
	ErrAlreadyExists = errors.New("person already exists")
)

type CreateRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	PersonType Type   `json:"person_type" validate:"required,oneof=física jurídica"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=100"`
	PersonType *Type   `json:"person_type" validate:"omitempty,oneof=física jurídica"`
}

type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   entity.Clock
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the time source for new and updated persons.
func WithClock(clock entity.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) entityOptions() []entity.Option {
	if s.clock == nil {
		return nil
	}
	return []entity.Option{entity.WithClock(s.clock)}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Person, error) {
	p := Create(req.Name, req.PersonType, s.entityOptions()...)
	if p.Notification().HasErrors("") {
		s.rejected(ctx, "create", p)
		return nil, validation.NewError(p.Notification())
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to insert person: %w", err)
	}

	s.logger.InfoContext(ctx, "person created", "person_id", p.ID().Value())
	if s.metrics != nil {
		s.metrics.IncrementPersonsCreated()
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id identity.ID) (*Person, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id identity.ID, req *UpdateRequest) (*Person, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.clock != nil {
		p.UseClock(s.clock)
	}

	if req.Name != nil {
		p.ChangeName(*req.Name)
	}
	if req.PersonType != nil {
		p.ChangeType(*req.PersonType)
	}

	if p.Notification().HasErrors("") {
		s.rejected(ctx, "update", p)
		return nil, validation.NewError(p.Notification())
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person updated", "person_id", p.ID().Value())
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id identity.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "person deleted", "person_id", id.Value())
	if s.metrics != nil {
		s.metrics.IncrementPersonsDeleted()
	}
	return nil
}

func (s *Service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	result, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveSearchPage(len(result.Items()))
	}
	return result, nil
}

func (s *Service) rejected(ctx context.Context, operation string, p *Person) {
	s.logger.InfoContext(ctx, "person rejected",
		"operation", operation,
		"errors", p.Notification().GetErrors(""),
	)
	if s.metrics != nil {
		s.metrics.IncrementValidationFailures(operation)
	}
}
