// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type ProductService struct {
	products   repository.ProductRepository
	businesses *BusinessService
	metrics    *metrics.Metrics
}

// ProductView is a product as shown to customers.
type ProductView struct {
	models.Product
	Purchasable bool `json:"purchasable"`
}

// CreateProductRequest leaves Price nil for "price not listed".
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,notblank,max=255"`
	Description string           `json:"description,omitempty"`
	ImageURL    string           `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

// UpdateProductRequest changes only the fields that are set. ClearPrice
// removes a listed price.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ClearPrice  bool             `json:"clear_price,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

func NewProductService(store *repository.Store, businesses *BusinessService, m *metrics.Metrics) *ProductService {
	return &ProductService{
		products:   store.Products,
		businesses: businesses,
		metrics:    m,
	}
}

func Views(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, Purchasable: p.Purchasable()})
	}
	return views
}

func checkPrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// ListForBusiness returns the catalog of a business the viewer may see.
func (s *ProductService) ListForBusiness(ctx context.Context, businessKey string, viewer *session.Session) ([]ProductView, error) {
	business, err := s.businesses.Get(ctx, businessKey, viewer)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return Views(products), nil
}

func (s *ProductService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]ProductView, error) {
	business, err := s.businesses.GetOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return Views(products), nil
}

func (s *ProductService) Create(ctx context.Context, ownerID uuid.UUID, req *CreateProductRequest) (*ProductView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		BusinessID:  business.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if req.Price != nil {
		product.Price = decimal.NewNullDecimal(*req.Price)
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.metrics.RecordProduct("create")
	return &ProductView{Product: *product, Purchasable: product.Purchasable()}, nil
}

// owned loads productID and checks it belongs to the owner's business.
func (s *ProductService) owned(ctx context.Context, ownerID, productID uuid.UUID) (*models.Product, error) {
	business, err := s.businesses.GetOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.BusinessID != business.ID {
		return nil, ErrNotOwner
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, ownerID, productID uuid.UUID, req *UpdateProductRequest) (*ProductView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}

	if _, err := s.owned(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	switch {
	case req.ClearPrice:
		updates["price"] = decimal.NullDecimal{}
	case req.Price != nil:
		updates["price"] = decimal.NewNullDecimal(*req.Price)
	}

	if err := s.products.Update(ctx, productID, updates); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.metrics.RecordProduct("update")
	return s.view(ctx, productID)
}

// SetAvailability toggles whether the product can be inquired about.
func (s *ProductService) SetAvailability(ctx context.Context, ownerID, productID uuid.UUID, available bool) (*ProductView, error) {
	if _, err := s.owned(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, productID, map[string]interface{}{"is_available": available}); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	s.metrics.RecordProduct("availability")
	return s.view(ctx, productID)
}

// Delete removes the product permanently.
func (s *ProductService) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, productID); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.metrics.RecordProduct("delete")
	return nil
}

func (s *ProductService) view(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &ProductView{Product: *product, Purchasable: product.Purchasable()}, nil
}
