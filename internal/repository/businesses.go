package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/bizdir-backend/internal/models"
)

type businessRepository struct {
	db *gorm.DB
}

func (r *businessRepository) Create(ctx context.Context, business *models.Business) error {
	return translate(r.db.WithContext(ctx).Create(business).Error)
}

func (r *businessRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *businessRepository) FindBySlug(ctx context.Context, slug string) (*models.Business, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *businessRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Business, error) {
	return r.findOne(ctx, "owner_id = ?", ownerID)
}

func (r *businessRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where(query, args...).
		First(&business).Error
	if err != nil {
		return nil, translate(err)
	}
	return &business, nil
}

func (r *businessRepository) FindAll(ctx context.Context, filter BusinessFilter) ([]models.Business, error) {
	query := r.db.WithContext(ctx).Model(&models.Business{}).Preload("Category")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var businesses []models.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, translate(err)
	}
	return businesses, nil
}

func (r *businessRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return affected(r.db.WithContext(ctx).Model(&models.Business{}).Where("id = ?", id).Updates(updates))
}

func (r *businessRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BusinessStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.Business{}).
		Where("id = ?", id).
		Update("status", status))
}

func (r *businessRepository) CountByStatus(ctx context.Context) (map[models.BusinessStatus]int64, error) {
	var rows []struct {
		Status models.BusinessStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Business{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[models.BusinessStatus]int64, len(models.BusinessStatuses))
	for _, s := range models.BusinessStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
