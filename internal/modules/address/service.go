package address

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service defines address book business logic. Every operation is scoped to
// the owning user so one customer can never touch another's addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	Create(ctx context.Context, userID uuid.UUID, req SaveAddressRequest) (*Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, req SaveAddressRequest) (*Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*Address, error)
}

var validate = validator.New()

type service struct {
	repo Repository
}

// NewService creates a new address service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req SaveAddressRequest) (*Address, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Address{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     req.Label,
		FullName:  req.FullName,
		Whatsapp:  req.Whatsapp,
		Address:   req.Address,
		Reference: req.Reference,
		Notes:     req.Notes,
		// The first address a user saves is always their default.
		IsDefault: req.IsDefault || len(existing) == 0,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, a.ID)
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, req SaveAddressRequest) (*Address, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	a, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("address not found: %w", err)
	}
	a.Label = req.Label
	a.FullName = req.FullName
	a.Whatsapp = req.Whatsapp
	a.Address = req.Address
	a.Reference = req.Reference
	a.Notes = req.Notes
	a.IsDefault = req.IsDefault

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("address not found: %w", err)
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	if err := s.repo.SetDefault(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("address not found: %w", err)
	}
	return s.repo.GetByID(ctx, userID, id)
}
