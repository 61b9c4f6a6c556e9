package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/models"
)

func (s *ServiceSuite) TestApproveThenReject() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")
	adminID := uuid.New()
	id := resp.Business.ID

	_, err := s.env.moderation.Approve(s.ctx, adminID, id, RequestMeta{IPAddress: "10.0.0.1"})
	s.Require().NoError(err)
	rejected, err := s.env.moderation.Reject(s.ctx, adminID, id, RequestMeta{})
	s.Require().NoError(err)
	s.Equal(models.BusinessStatusRejected, rejected.Status)

	tabs, err := s.env.moderation.Partition(s.ctx)
	s.Require().NoError(err)
	s.Len(tabs[models.BusinessStatusRejected], 1)
	s.Empty(tabs[models.BusinessStatusApproved])
	s.Empty(tabs[models.BusinessStatusPending])

	results, err := s.env.businesses.Search(s.ctx, SearchParams{})
	s.Require().NoError(err)
	s.Empty(results)

	logs := s.env.db.AuditLogs()
	s.Require().Len(logs, 2)
	s.Equal("pending", logs[0].OldValues["status"])
	s.Equal("approved", logs[0].NewValues["status"])
	s.Equal("10.0.0.1", logs[0].IPAddress)
	s.Equal(adminID, *logs[1].UserID)

	s.env.notifier.waitFor(s.T(), "approved:corner-store")
	s.env.notifier.waitFor(s.T(), "rejected:corner-store")
}

func (s *ServiceSuite) TestSetStatusIsIdempotent() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")

	for i := 0; i < 2; i++ {
		b, err := s.env.moderation.SetStatus(s.ctx, uuid.New(), resp.Business.ID, "approved", RequestMeta{})
		s.Require().NoError(err)
		s.Equal(models.BusinessStatusApproved, b.Status)
	}

	approved, err := s.env.moderation.ListByStatus(s.ctx, "approved")
	s.Require().NoError(err)
	s.Len(approved, 1)

	// every state is reachable from every other
	for _, target := range []string{"pending", "rejected", "approved", "pending"} {
		b, err := s.env.moderation.SetStatus(s.ctx, uuid.New(), resp.Business.ID, target, RequestMeta{})
		s.Require().NoError(err)
		s.Equal(models.BusinessStatus(target), b.Status)
	}
}

func (s *ServiceSuite) TestSetStatusErrors() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")

	_, err := s.env.moderation.SetStatus(s.ctx, uuid.New(), resp.Business.ID, "archived", RequestMeta{})
	s.ErrorIs(err, listing.ErrInvalidStatus)

	_, err = s.env.moderation.SetStatus(s.ctx, uuid.New(), uuid.New(), "approved", RequestMeta{})
	s.ErrorIs(err, ErrBusinessNotFound)

	_, err = s.env.moderation.ListByStatus(s.ctx, "archived")
	s.ErrorIs(err, listing.ErrInvalidStatus)
}

func (s *ServiceSuite) TestPartitionCoversEveryBusiness() {
	a := s.env.registerOwner(s.T(), "a@example.com", "Alpha")
	b := s.env.registerOwner(s.T(), "b@example.com", "Bravo")
	s.env.registerOwner(s.T(), "c@example.com", "Charlie")

	_, err := s.env.moderation.Approve(s.ctx, uuid.New(), a.Business.ID, RequestMeta{})
	s.Require().NoError(err)
	_, err = s.env.moderation.Reject(s.ctx, uuid.New(), b.Business.ID, RequestMeta{})
	s.Require().NoError(err)

	tabs, err := s.env.moderation.Partition(s.ctx)
	s.Require().NoError(err)

	total := 0
	for _, status := range models.BusinessStatuses {
		s.Len(tabs[status], 1)
		total += len(tabs[status])
	}
	s.Equal(3, total)

	stats, err := s.env.moderation.GetDashboardStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), stats.TotalBusinesses)
	s.Equal(int64(1), stats.ByStatus[models.BusinessStatusPending])
}
