// Package repository is the record-store boundary: per-table reads and
// writes behind interfaces, with gorm/postgres implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/bizdir-backend/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("record violates a unique constraint")
	ErrInvalidRef   = errors.New("record references a missing row")
	ErrInvalidValue = errors.New("record violates a check constraint")
)

type UserRepository interface {
	// Create inserts the identity and its profile together.
	Create(ctx context.Context, user *models.User, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	RecordSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
	// BumpSessionVersion invalidates every token issued so far and returns
	// the new version.
	BumpSessionVersion(ctx context.Context, id uuid.UUID) (int, error)
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
}

// BusinessFilter narrows FindAll. Zero values mean "any".
type BusinessFilter struct {
	Status     *models.BusinessStatus
	CategoryID *uuid.UUID
}

type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	FindBySlug(ctx context.Context, slug string) (*models.Business, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Business, error)
	FindAll(ctx context.Context, filter BusinessFilter) ([]models.Business, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BusinessStatus) error
	CountByStatus(ctx context.Context) (map[models.BusinessStatus]int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ReviewRepository writes keep the business rating aggregates in step: each
// write and the recompute of its business commit together.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, id uuid.UUID, rating int, comment string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	RecomputeAll(ctx context.Context) (int, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Store bundles the gorm-backed repositories.
type Store struct {
	Users      UserRepository
	Profiles   ProfileRepository
	Categories CategoryRepository
	Businesses BusinessRepository
	Products   ProductRepository
	Reviews    ReviewRepository
	Audit      AuditRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:      &userRepository{db: db},
		Profiles:   &profileRepository{db: db},
		Categories: &categoryRepository{db: db},
		Businesses: &businessRepository{db: db},
		Products:   &productRepository{db: db},
		Reviews:    &reviewRepository{db: db},
		Audit:      &auditRepository{db: db},
	}
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrInvalidRef, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return errors.Join(ErrInvalidValue, err)
	default:
		return err
	}
}

// affected turns a zero-row write into ErrNotFound.
func affected(tx *gorm.DB) error {
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
