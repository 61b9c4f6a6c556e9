// internal/services/moderation_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
)

// ModerationService holds the admin-only listing decisions.
type ModerationService struct {
	businesses repository.BusinessRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	audit      repository.AuditRepository
	notifier   Notifier
	metrics    *metrics.Metrics
}

// RequestMeta identifies where an admin action came from.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type AdminDashboardStats struct {
	TotalBusinesses int64                           `json:"total_businesses"`
	ByStatus        map[models.BusinessStatus]int64 `json:"by_status"`
	TotalProducts   int64                           `json:"total_products"`
}

func NewModerationService(store *repository.Store, notifier Notifier, m *metrics.Metrics) *ModerationService {
	return &ModerationService{
		businesses: store.Businesses,
		products:   store.Products,
		users:      store.Users,
		audit:      store.Audit,
		notifier:   notifier,
		metrics:    m,
	}
}

// SetStatus overwrites the status of a business. The current state is not
// checked; concurrent decisions resolve as last writer wins.
func (s *ModerationService) SetStatus(ctx context.Context, adminID, businessID uuid.UUID, status string, meta RequestMeta) (*models.Business, error) {
	target, err := listing.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to load business: %w", err)
	}

	previous := business.Status
	if err := listing.CheckTransition(previous, target); err != nil {
		return nil, err
	}

	if err := s.businesses.UpdateStatus(ctx, businessID, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to update business status: %w", err)
	}
	business.Status = target

	s.metrics.RecordModeration(string(target))
	s.createAuditLog(ctx, adminID, "business.status", businessID, meta,
		map[string]interface{}{"status": string(previous)},
		map[string]interface{}{"status": string(target)},
	)

	logrus.WithFields(logrus.Fields{
		"admin_id":    adminID,
		"business_id": businessID,
		"from":        previous,
		"to":          target,
	}).Info("Business status updated")

	if previous != target {
		notified := *business
		dispatch("status notification", logrus.Fields{"business_id": businessID}, func() error {
			owner, err := s.users.FindByID(context.Background(), notified.OwnerID)
			if err != nil {
				return err
			}
			return s.notifier.SendBusinessStatusChanged(owner, &notified)
		})
	}

	return business, nil
}

func (s *ModerationService) Approve(ctx context.Context, adminID, businessID uuid.UUID, meta RequestMeta) (*models.Business, error) {
	return s.SetStatus(ctx, adminID, businessID, string(models.BusinessStatusApproved), meta)
}

func (s *ModerationService) Reject(ctx context.Context, adminID, businessID uuid.UUID, meta RequestMeta) (*models.Business, error) {
	return s.SetStatus(ctx, adminID, businessID, string(models.BusinessStatusRejected), meta)
}

// ListByStatus returns one admin tab.
func (s *ModerationService) ListByStatus(ctx context.Context, status string) ([]models.Business, error) {
	target, err := listing.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	businesses, err := s.businesses.FindAll(ctx, repository.BusinessFilter{Status: &target})
	if err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}
	return businesses, nil
}

// Partition fetches every business once and groups them into the three
// admin tabs.
func (s *ModerationService) Partition(ctx context.Context) (map[models.BusinessStatus][]models.Business, error) {
	businesses, err := s.businesses.FindAll(ctx, repository.BusinessFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}
	return listing.Partition(businesses), nil
}

func (s *ModerationService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	counts, err := s.businesses.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count businesses: %w", err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	stats := &AdminDashboardStats{ByStatus: counts, TotalProducts: products}
	for _, n := range counts {
		stats.TotalBusinesses += n
	}
	return stats, nil
}

// Helper methods
func (s *ModerationService) createAuditLog(ctx context.Context, userID uuid.UUID, action string, resourceID uuid.UUID, meta RequestMeta, oldValues, newValues map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: "business",
		ResourceID:   &resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("business_id", resourceID).Error("Failed to write audit log")
	}
}
