package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/bizdir-backend/internal/database"
	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/models"
)

type reviewRepository struct {
	db *gorm.DB
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := lockBusiness(tx, review.BusinessID); err != nil {
			return err
		}
		if err := tx.Omit("Business").Create(review).Error; err != nil {
			return translate(err)
		}
		return recomputeRating(tx, review.BusinessID)
	})
}

func (r *reviewRepository) Update(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := lockBusiness(tx, review.BusinessID); err != nil {
			return err
		}
		err := tx.Model(&review).Updates(map[string]interface{}{
			"rating":  rating,
			"comment": comment,
		}).Error
		if err != nil {
			return translate(err)
		}
		return recomputeRating(tx, review.BusinessID)
	})
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := lockBusiness(tx, review.BusinessID); err != nil {
			return err
		}
		if err := tx.Delete(&review).Error; err != nil {
			return translate(err)
		}
		return recomputeRating(tx, review.BusinessID)
	})
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Business").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

// RecomputeAll rebuilds the rating aggregates of every business and returns
// how many were processed.
func (r *reviewRepository) RecomputeAll(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Business{}).Pluck("id", &ids).Error; err != nil {
		return 0, translate(err)
	}

	for i, id := range ids {
		err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
			if err := lockBusiness(tx, id); err != nil {
				return err
			}
			return recomputeRating(tx, id)
		})
		if err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// lockBusiness serialises concurrent review writes against one business.
func lockBusiness(tx *gorm.DB, businessID uuid.UUID) error {
	var business models.Business
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&business, "id = ?", businessID).Error
	return translate(err)
}

func recomputeRating(tx *gorm.DB, businessID uuid.UUID) error {
	var ratings []int
	err := tx.Model(&models.Review{}).
		Where("business_id = ?", businessID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return translate(err)
	}

	avg, total := listing.Aggregate(ratings)
	var average interface{}
	if avg != nil {
		average = *avg
	}

	return translate(tx.Model(&models.Business{}).
		Where("id = ?", businessID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_reviews":  total,
		}).Error)
}
