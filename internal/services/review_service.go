// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type ReviewService struct {
	reviews    repository.ReviewRepository
	businesses *BusinessService
	metrics    *metrics.Metrics
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

func NewReviewService(store *repository.Store, businesses *BusinessService, m *metrics.Metrics) *ReviewService {
	return &ReviewService{
		reviews:    store.Reviews,
		businesses: businesses,
		metrics:    m,
	}
}

// Create adds the author's review of an approved business and refreshes
// the business rating in the same transaction.
func (s *ReviewService) Create(ctx context.Context, author *session.Session, businessKey string, req *ReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// Only public listings accept reviews, whoever the author is.
	business, err := s.businesses.Get(ctx, businessKey, nil)
	if err != nil {
		return nil, err
	}
	if business.OwnerID == author.UserID {
		return nil, ErrOwnBusinessReview
	}

	review := &models.Review{
		BusinessID: business.ID,
		UserID:     author.UserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateReview
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.metrics.RecordReview("create")
	return review, nil
}

func (s *ReviewService) authored(ctx context.Context, author *session.Session, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.UserID != author.UserID && !author.IsAdmin {
		return nil, ErrNotOwner
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, author *session.Session, reviewID uuid.UUID, req *ReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if _, err := s.authored(ctx, author, reviewID); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, reviewID, req.Rating, req.Comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.metrics.RecordReview("update")
	return s.reviews.FindByID(ctx, reviewID)
}

// Delete removes a review. Admins may delete any review.
func (s *ReviewService) Delete(ctx context.Context, author *session.Session, reviewID uuid.UUID) error {
	if _, err := s.authored(ctx, author, reviewID); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.metrics.RecordReview("delete")
	return nil
}

func (s *ReviewService) ListForBusiness(ctx context.Context, businessKey string, viewer *session.Session) ([]models.Review, error) {
	business, err := s.businesses.Get(ctx, businessKey, viewer)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return reviews, nil
}

// RecomputeAll rebuilds every business rating from its reviews.
func (s *ReviewService) RecomputeAll(ctx context.Context) (int, error) {
	n, err := s.reviews.RecomputeAll(ctx)
	if err != nil {
		return n, fmt.Errorf("failed to recompute ratings: %w", err)
	}
	return n, nil
}
