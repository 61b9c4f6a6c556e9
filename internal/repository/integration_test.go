//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/database"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
)

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *gorm.DB
	store     *repository.Store
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bizdir"),
		postgres.WithUsername("bizdir"),
		postgres.WithPassword("bizdir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = database.Open(dsn, config.DatabaseConfig{MaxOpenConns: 5, LogLevel: "silent"})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(s.db))
	s.Require().NoError(database.SeedCategories(s.db))
	s.store = repository.NewStore(s.db)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		database.Close(s.db)
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate container: %v", err)
		}
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE audit_logs, reviews, products, businesses, profiles, users CASCADE").Error)
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) user(email string, userType models.UserType) *models.User {
	u := &models.User{Email: email, UserType: userType, SessionVersion: 1}
	s.Require().NoError(u.SetPassword("secret123"))
	s.Require().NoError(s.store.Users.Create(s.ctx, u, &models.Profile{FirstName: "Asha"}))
	return u
}

func (s *PostgresSuite) business(owner *models.User, name, slug string) *models.Business {
	b := &models.Business{
		Name:    name,
		Slug:    slug,
		OwnerID: owner.ID,
		City:    "Pune",
		State:   "Maharashtra",
		Status:  models.BusinessStatusPending,
	}
	s.Require().NoError(s.store.Businesses.Create(s.ctx, b))
	return b
}

func (s *PostgresSuite) TestSeededCategories() {
	categories, err := s.store.Categories.List(s.ctx)
	s.Require().NoError(err)
	s.Len(categories, len(database.DefaultCategories))

	// Seeding twice is a no-op.
	s.Require().NoError(database.SeedCategories(s.db))
	categories, _ = s.store.Categories.List(s.ctx)
	s.Len(categories, len(database.DefaultCategories))
}

func (s *PostgresSuite) TestUserUniqueness() {
	u := s.user("asha@example.com", models.UserTypeCustomer)

	profile, err := s.store.Profiles.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Asha", profile.FirstName)

	dup := &models.User{Email: "ASHA@example.com", SessionVersion: 1, PasswordHash: "x"}
	err = s.store.Users.Create(s.ctx, dup, &models.Profile{})
	s.ErrorIs(err, repository.ErrDuplicate)

	version, err := s.store.Users.BumpSessionVersion(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(2, version)

	_, err = s.store.Users.BumpSessionVersion(s.ctx, uuid.New())
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestBusinessConstraints() {
	owner := s.user("owner@example.com", models.UserTypeBusiness)
	other := s.user("other@example.com", models.UserTypeBusiness)
	b := s.business(owner, "Corner Store", "corner-store")

	found, err := s.store.Businesses.FindBySlug(s.ctx, "corner-store")
	s.Require().NoError(err)
	s.Equal(b.ID, found.ID)
	s.Nil(found.AverageRating)

	clash := &models.Business{Name: "Corner Store", Slug: "corner-store", OwnerID: other.ID, City: "Pune", State: "MH", Status: models.BusinessStatusPending}
	s.ErrorIs(s.store.Businesses.Create(s.ctx, clash), repository.ErrDuplicate)

	missing := uuid.New()
	orphan := &models.Business{Name: "Orphan", Slug: "orphan", OwnerID: other.ID, CategoryID: &missing, City: "Pune", State: "MH", Status: models.BusinessStatusPending}
	s.ErrorIs(s.store.Businesses.Create(s.ctx, orphan), repository.ErrInvalidRef)

	s.Require().NoError(s.store.Businesses.UpdateStatus(s.ctx, b.ID, models.BusinessStatusApproved))
	s.ErrorIs(s.store.Businesses.UpdateStatus(s.ctx, uuid.New(), models.BusinessStatusApproved), repository.ErrNotFound)

	approved := models.BusinessStatusApproved
	list, err := s.store.Businesses.FindAll(s.ctx, repository.BusinessFilter{Status: &approved})
	s.Require().NoError(err)
	s.Len(list, 1)

	counts, err := s.store.Businesses.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), counts[models.BusinessStatusApproved])
	s.Equal(int64(0), counts[models.BusinessStatusPending])
}

func (s *PostgresSuite) TestProductPrices() {
	owner := s.user("owner@example.com", models.UserTypeBusiness)
	b := s.business(owner, "Corner Store", "corner-store")

	unpriced := &models.Product{BusinessID: b.ID, Name: "Custom cake", IsAvailable: true}
	s.Require().NoError(s.store.Products.Create(s.ctx, unpriced))
	priced := &models.Product{BusinessID: b.ID, Name: "Tea", Price: decimal.NewNullDecimal(decimal.RequireFromString("40.50")), IsAvailable: true}
	s.Require().NoError(s.store.Products.Create(s.ctx, priced))

	got, err := s.store.Products.FindByID(s.ctx, unpriced.ID)
	s.Require().NoError(err)
	s.False(got.Price.Valid)
	s.True(got.IsAvailable)

	seasonal := &models.Product{BusinessID: b.ID, Name: "Mango lassi", IsAvailable: false}
	s.Require().NoError(s.store.Products.Create(s.ctx, seasonal))
	got, err = s.store.Products.FindByID(s.ctx, seasonal.ID)
	s.Require().NoError(err)
	s.False(got.IsAvailable, "false must not fall back to the column default")
	s.False(got.CreatedAt.IsZero())

	got, err = s.store.Products.FindByID(s.ctx, priced.ID)
	s.Require().NoError(err)
	s.True(got.Price.Decimal.Equal(decimal.RequireFromString("40.5")))

	s.Require().NoError(s.store.Products.Update(s.ctx, priced.ID, map[string]interface{}{"is_available": false, "price": decimal.NullDecimal{}}))
	got, _ = s.store.Products.FindByID(s.ctx, priced.ID)
	s.False(got.IsAvailable)
	s.False(got.Price.Valid)

	s.Require().NoError(s.store.Products.Delete(s.ctx, priced.ID))
	s.ErrorIs(s.store.Products.Delete(s.ctx, priced.ID), repository.ErrNotFound)
}

func (s *PostgresSuite) TestReviewAggregates() {
	owner := s.user("owner@example.com", models.UserTypeBusiness)
	b := s.business(owner, "Corner Store", "corner-store")

	var reviews []*models.Review
	for i, rating := range []int{5, 4, 4} {
		author := s.user(uuid.NewString()+"@example.com", models.UserTypeCustomer)
		review := &models.Review{BusinessID: b.ID, UserID: author.ID, Rating: rating}
		s.Require().NoError(s.store.Reviews.Create(s.ctx, review), "review %d", i)
		reviews = append(reviews, review)
	}

	found, err := s.store.Businesses.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.AverageRating)
	s.InDelta(4.33, *found.AverageRating, 0.001)
	s.Equal(int64(3), found.TotalReviews)

	dup := &models.Review{BusinessID: b.ID, UserID: reviews[0].UserID, Rating: 1}
	s.ErrorIs(s.store.Reviews.Create(s.ctx, dup), repository.ErrDuplicate)

	s.Require().NoError(s.store.Reviews.Update(s.ctx, reviews[0].ID, 2, "changed my mind"))
	found, _ = s.store.Businesses.FindByID(s.ctx, b.ID)
	s.InDelta(3.33, *found.AverageRating, 0.001)

	for _, r := range reviews {
		s.Require().NoError(s.store.Reviews.Delete(s.ctx, r.ID))
	}
	found, _ = s.store.Businesses.FindByID(s.ctx, b.ID)
	s.Nil(found.AverageRating)
	s.Zero(found.TotalReviews)

	// Drift the aggregate by hand and repair it.
	s.Require().NoError(s.db.Model(&models.Business{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"average_rating": 1.5, "total_reviews": 9}).Error)
	n, err := s.store.Reviews.RecomputeAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	found, _ = s.store.Businesses.FindByID(s.ctx, b.ID)
	s.Nil(found.AverageRating)
	s.Zero(found.TotalReviews)
}

func (s *PostgresSuite) TestAuditLog() {
	entry := &models.AuditLog{
		Action:       "business.status",
		ResourceType: "business",
		OldValues:    map[string]interface{}{"status": "pending"},
		NewValues:    map[string]interface{}{"status": "approved"},
	}
	s.Require().NoError(s.store.Audit.Create(s.ctx, entry))
	s.NotEqual(uuid.Nil, entry.ID)

	var saved models.AuditLog
	s.Require().NoError(s.db.First(&saved, "id = ?", entry.ID).Error)
	s.Equal("approved", saved.NewValues["status"])
}
