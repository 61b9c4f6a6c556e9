// internal/services/category_service.go
package services

import (
	"context"
	"fmt"

	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(store *repository.Store) *CategoryService {
	return &CategoryService{categories: store.Categories}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// Resolve finds a category by slug or display name.
func (s *CategoryService) Resolve(ctx context.Context, key string) (*models.Category, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	category, ok := listing.ResolveCategory(categories, key)
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}
