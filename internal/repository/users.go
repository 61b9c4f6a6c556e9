package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/bizdir-backend/internal/database"
	"github.com/javajoker/bizdir-backend/internal/models"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translate(err)
		}
		if profile == nil {
			return nil
		}
		profile.ID = user.ID
		return translate(tx.Create(profile).Error)
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) RecordSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at))
}

func (r *userRepository) BumpSessionVersion(ctx context.Context, id uuid.UUID) (int, error) {
	var version int
	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", id).
			UpdateColumn("session_version", gorm.Expr("session_version + 1"))
		if err := affected(res); err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", id).
			Pluck("session_version", &version).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return affected(r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates))
}
