// internal/services/business_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type BusinessService struct {
	businesses repository.BusinessRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	notifier   Notifier
	metrics    *metrics.Metrics
	cfg        *config.Config
}

// BusinessRequest carries the owner-supplied fields of a listing. Category
// may be given as an id or as a slug/display name.
type BusinessRequest struct {
	Name         string                 `json:"name" validate:"required,notblank,max=255"`
	CategoryID   *uuid.UUID             `json:"category_id,omitempty"`
	Category     string                 `json:"category,omitempty" validate:"max=100"`
	Description  string                 `json:"description,omitempty"`
	Address      string                 `json:"address,omitempty"`
	City         string                 `json:"city" validate:"required,notblank,max=100"`
	State        string                 `json:"state" validate:"required,notblank,max=100"`
	Pincode      string                 `json:"pincode,omitempty" validate:"omitempty,pincode"`
	Phone        string                 `json:"phone,omitempty" validate:"omitempty,phone"`
	Email        string                 `json:"email,omitempty" validate:"omitempty,email"`
	Website      string                 `json:"website,omitempty" validate:"omitempty,url"`
	OpeningHours map[string]interface{} `json:"opening_hours,omitempty"`
}

// UpdateBusinessRequest changes only the fields that are set. Status, owner
// and slug are not editable.
type UpdateBusinessRequest struct {
	Name         *string                `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	CategoryID   *uuid.UUID             `json:"category_id,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Address      *string                `json:"address,omitempty"`
	City         *string                `json:"city,omitempty" validate:"omitempty,notblank,max=100"`
	State        *string                `json:"state,omitempty" validate:"omitempty,notblank,max=100"`
	Pincode      *string                `json:"pincode,omitempty" validate:"omitempty,pincode"`
	Phone        *string                `json:"phone,omitempty" validate:"omitempty,phone"`
	Email        *string                `json:"email,omitempty" validate:"omitempty,email"`
	Website      *string                `json:"website,omitempty" validate:"omitempty,url"`
	OpeningHours map[string]interface{} `json:"opening_hours,omitempty"`
}

type SearchParams struct {
	Search   string `form:"search"`
	Location string `form:"location"`
	Category string `form:"category"`
	Sort     string `form:"sort"`
}

func NewBusinessService(store *repository.Store, notifier Notifier, m *metrics.Metrics, cfg *config.Config) *BusinessService {
	return &BusinessService{
		businesses: store.Businesses,
		categories: store.Categories,
		users:      store.Users,
		notifier:   notifier,
		metrics:    m,
		cfg:        cfg,
	}
}

// Create registers a new listing for ownerID. The listing always starts
// pending; its slug comes from the name.
func (s *BusinessService) Create(ctx context.Context, ownerID uuid.UUID, req *BusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	categoryID, err := s.resolveCategoryID(ctx, req.CategoryID, req.Category)
	if err != nil {
		return nil, err
	}

	if _, err := s.businesses.FindByOwner(ctx, ownerID); err == nil {
		return nil, ErrBusinessExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing business: %w", err)
	}

	business := &models.Business{
		Name:        strings.TrimSpace(req.Name),
		Slug:        listing.Slugify(req.Name),
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Description: req.Description,
		Address:     req.Address,
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Pincode:     req.Pincode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Status:      models.BusinessStatusPending,
	}
	if req.OpeningHours != nil {
		business.OpeningHours = datatypes.JSONMap(req.OpeningHours)
	}

	if err := s.businesses.Create(ctx, business); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			// Two unique indexes: owner_id and slug. A concurrent create by
			// the same owner wins the first.
			if _, ferr := s.businesses.FindByOwner(ctx, ownerID); ferr == nil {
				return nil, ErrBusinessExists
			}
			return nil, fmt.Errorf("%w: %q", ErrSlugTaken, business.Slug)
		case errors.Is(err, repository.ErrInvalidRef):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"business_id": business.ID,
		"owner_id":    ownerID,
		"slug":        business.Slug,
	}).Info("Business submitted for review")

	dispatch("business submitted notification", logrus.Fields{"business_id": business.ID}, func() error {
		owner, err := s.users.FindByID(context.Background(), ownerID)
		if err != nil {
			return err
		}
		return s.notifier.SendBusinessSubmitted(owner, business)
	})

	return business, nil
}

func (s *BusinessService) resolveCategoryID(ctx context.Context, id *uuid.UUID, key string) (*uuid.UUID, error) {
	if id != nil {
		return id, nil
	}
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	category, ok := listing.ResolveCategory(categories, key)
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &category.ID, nil
}

// Get looks a business up by id or slug. Listings that are not approved
// are visible only to their owner and to admins.
func (s *BusinessService) Get(ctx context.Context, key string, viewer *session.Session) (*models.Business, error) {
	var (
		business *models.Business
		err      error
	)
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		business, err = s.businesses.FindByID(ctx, id)
	} else {
		business, err = s.businesses.FindBySlug(ctx, key)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to load business: %w", err)
	}

	if !CanView(business, viewer) {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}

// CanView reports whether viewer may see business.
func CanView(business *models.Business, viewer *session.Session) bool {
	if business.IsPublic() {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin || viewer.UserID == business.OwnerID
}

func (s *BusinessService) GetOwned(ctx context.Context, ownerID uuid.UUID) (*models.Business, error) {
	business, err := s.businesses.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	return business, nil
}

// editable returns the owner's business if its settings may be changed.
func (s *BusinessService) editable(ctx context.Context, ownerID uuid.UUID) (*models.Business, error) {
	business, err := s.GetOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if business.Status != models.BusinessStatusApproved {
		return nil, ErrBusinessNotApproved
	}
	return business, nil
}

func (s *BusinessService) UpdateOwned(ctx context.Context, ownerID uuid.UUID, req *UpdateBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	business, err := s.editable(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("address", req.Address)
	setString("city", req.City)
	setString("state", req.State)
	setString("pincode", req.Pincode)
	setString("phone", req.Phone)
	setString("email", req.Email)
	setString("website", req.Website)
	if req.CategoryID != nil {
		updates["category_id"] = req.CategoryID
	}
	if req.OpeningHours != nil {
		updates["opening_hours"] = datatypes.JSONMap(req.OpeningHours)
	}

	if err := s.businesses.Update(ctx, business.ID, updates); err != nil {
		if errors.Is(err, repository.ErrInvalidRef) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	return s.GetOwned(ctx, ownerID)
}

// SetMedia stores an uploaded logo or cover URL on the owner's business.
func (s *BusinessService) SetMedia(ctx context.Context, ownerID uuid.UUID, kind, url string) (*models.Business, error) {
	var column string
	switch kind {
	case "logo":
		column = "logo_url"
	case "cover":
		column = "cover_url"
	default:
		return nil, ErrInvalidMediaKind
	}

	business, err := s.editable(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.businesses.Update(ctx, business.ID, map[string]interface{}{column: url}); err != nil {
		return nil, fmt.Errorf("failed to update business media: %w", err)
	}
	return s.GetOwned(ctx, ownerID)
}

// Search returns approved businesses matching params, sorted in memory.
// An unknown category matches nothing.
func (s *BusinessService) Search(ctx context.Context, params SearchParams) ([]models.Business, error) {
	query := listing.Query{
		Search:   strings.TrimSpace(params.Search),
		Location: strings.TrimSpace(params.Location),
		Sort:     listing.ParseSortKey(params.Sort),
	}

	if strings.TrimSpace(params.Category) != "" {
		categoryID, err := s.resolveCategoryID(ctx, nil, params.Category)
		if errors.Is(err, ErrCategoryNotFound) {
			s.metrics.RecordSearch(string(query.Sort), 0)
			return []models.Business{}, nil
		}
		if err != nil {
			return nil, err
		}
		query.CategoryID = categoryID
	}

	approved := models.BusinessStatusApproved
	businesses, err := s.businesses.FindAll(ctx, repository.BusinessFilter{
		Status:     &approved,
		CategoryID: query.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}

	results := query.Apply(businesses)
	s.metrics.RecordSearch(string(query.Sort), len(results))
	return results, nil
}

// Featured returns the best-rated approved businesses.
func (s *BusinessService) Featured(ctx context.Context, limit int) ([]models.Business, error) {
	if limit <= 0 {
		limit = s.cfg.Listing.FeaturedLimit
	}

	results, err := s.Search(ctx, SearchParams{Sort: string(listing.SortByRating)})
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
