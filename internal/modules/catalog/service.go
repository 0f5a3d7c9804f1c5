package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines catalog business logic.
type Service interface {
	// ListProducts returns the active catalog, filtered and sorted.
	ListProducts(ctx context.Context, params ListParams) ([]*Product, error)

	// GetProduct returns an active product for the storefront; inactive or
	// unknown products are not found.
	GetProduct(ctx context.Context, id string) (*Product, error)

	// CreateProduct and UpdateProduct are operator-only.
	CreateProduct(ctx context.Context, req SaveProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id string, req SaveProductRequest) (*Product, error)
}

// SaveProductRequest is the operator payload for creating or editing a product.
type SaveProductRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

var validate = validator.New()

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListProducts(ctx context.Context, params ListParams) ([]*Product, error) {
	return s.repo.ListActive(ctx, params)
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	return s.repo.GetActive(ctx, pid)
}

func (s *service) CreateProduct(ctx context.Context, req SaveProductRequest) (*Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    active,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req SaveProductRequest) (*Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.ImageURL = req.ImageURL
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validateProduct(req SaveProductRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("invalid product: price must not be negative")
	}
	return nil
}
