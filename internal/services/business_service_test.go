package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/session"
)

func strPtr(s string) *string { return &s }

// rate sets the stored aggregates of a business directly.
func (s *ServiceSuite) rate(id uuid.UUID, avg float64, total int64) {
	err := s.env.db.Store().Businesses.Update(s.ctx, id, map[string]interface{}{
		"average_rating": avg,
		"total_reviews":  total,
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestCreateDuplicateSlug() {
	first := s.env.registerOwner(s.T(), "one@example.com", "Corner Store")

	second, err := s.env.auth.Register(s.ctx, businessForm("two@example.com", "corner   STORE"))

	s.ErrorIs(err, ErrSlugTaken)
	s.Require().NotNil(second, "identity is kept on a partial sign-up")
	s.Equal("corner-store", first.Business.Slug)
}

func (s *ServiceSuite) TestCreateOneBusinessPerOwner() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")

	_, err := s.env.businesses.Create(s.ctx, resp.User.ID, &BusinessRequest{Name: "Second", City: "Pune", State: "MH"})
	s.ErrorIs(err, ErrBusinessExists)
}

func (s *ServiceSuite) TestCreateRacingSameOwner() {
	owner := uuid.New()
	s.env.db.BeforeBusinessCreate = func() {
		rival := &models.Business{Name: "Rival", Slug: "rival", OwnerID: owner, City: "Pune", State: "MH"}
		s.Require().NoError(s.env.db.Store().Businesses.Create(s.ctx, rival))
	}

	_, err := s.env.businesses.Create(s.ctx, owner, &BusinessRequest{Name: "Corner Store", City: "Pune", State: "MH"})

	s.ErrorIs(err, ErrBusinessExists)
	s.NotErrorIs(err, ErrSlugTaken)
}

func (s *ServiceSuite) TestCreateResolvesCategory() {
	grocery := s.env.db.AddCategory("Grocery & Essentials", "grocery")
	owner := uuid.New()

	business, err := s.env.businesses.Create(s.ctx, owner, &BusinessRequest{
		Name: "Daily Needs", City: "Pune", State: "MH", Category: "grocery & ESSENTIALS",
	})
	s.Require().NoError(err)
	s.Equal(grocery.ID, *business.CategoryID)

	_, err = s.env.businesses.Create(s.ctx, uuid.New(), &BusinessRequest{
		Name: "Other", City: "Pune", State: "MH", Category: "toys",
	})
	s.ErrorIs(err, ErrCategoryNotFound)

	missing := uuid.New()
	_, err = s.env.businesses.Create(s.ctx, uuid.New(), &BusinessRequest{
		Name: "Third", City: "Pune", State: "MH", CategoryID: &missing,
	})
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *ServiceSuite) TestGetVisibility() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")
	b := resp.Business

	_, err := s.env.businesses.Get(s.ctx, b.Slug, nil)
	s.ErrorIs(err, ErrBusinessNotFound, "pending listings are hidden from the public")

	stranger := &session.Session{UserID: uuid.New()}
	_, err = s.env.businesses.Get(s.ctx, b.ID.String(), stranger)
	s.ErrorIs(err, ErrBusinessNotFound)

	got, err := s.env.businesses.Get(s.ctx, b.Slug, resp.Session)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)

	admin := &session.Session{UserID: uuid.New(), IsAdmin: true}
	_, err = s.env.businesses.Get(s.ctx, b.ID.String(), admin)
	s.NoError(err)

	_, err = s.env.moderation.Approve(s.ctx, admin.UserID, b.ID, RequestMeta{})
	s.Require().NoError(err)
	_, err = s.env.businesses.Get(s.ctx, b.Slug, nil)
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdateOwnedRequiresApproval() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")

	_, err := s.env.businesses.UpdateOwned(s.ctx, resp.User.ID, &UpdateBusinessRequest{Phone: strPtr("+91 98765 43210")})
	s.ErrorIs(err, ErrBusinessNotApproved)

	_, err = s.env.businesses.SetMedia(s.ctx, resp.User.ID, "logo", "https://cdn.example.com/logo.png")
	s.ErrorIs(err, ErrBusinessNotApproved)

	_, err = s.env.moderation.Approve(s.ctx, uuid.New(), resp.Business.ID, RequestMeta{})
	s.Require().NoError(err)

	updated, err := s.env.businesses.UpdateOwned(s.ctx, resp.User.ID, &UpdateBusinessRequest{
		Name:         strPtr("Corner Store & Cafe"),
		Phone:        strPtr("+91 98765 43210"),
		OpeningHours: map[string]interface{}{"mon": "09:00-21:00"},
	})
	s.Require().NoError(err)
	s.Equal("Corner Store & Cafe", updated.Name)
	s.Equal("corner-store", updated.Slug, "slug is not rewritten on rename")
	s.Equal(models.BusinessStatusApproved, updated.Status)
	s.Equal("09:00-21:00", updated.OpeningHours["mon"])

	withLogo, err := s.env.businesses.SetMedia(s.ctx, resp.User.ID, "logo", "https://cdn.example.com/logo.png")
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/logo.png", withLogo.LogoURL)

	_, err = s.env.businesses.SetMedia(s.ctx, resp.User.ID, "banner", "x")
	s.ErrorIs(err, ErrInvalidMediaKind)
}

func (s *ServiceSuite) TestUpdateOwnedRejectsBlankName() {
	resp, _ := s.env.approvedBusiness(s.T(), "blank-edit@example.com", "Blank Edit")

	_, err := s.env.businesses.UpdateOwned(s.ctx, resp.User.ID, &UpdateBusinessRequest{Name: strPtr("   ")})
	s.ErrorIs(err, ErrValidation)

	business, err := s.env.businesses.GetOwned(s.ctx, resp.User.ID)
	s.Require().NoError(err)
	s.Equal("Blank Edit", business.Name)
}

func (s *ServiceSuite) TestSearchSortsByRatingAndReviews() {
	_, a := s.env.approvedBusiness(s.T(), "a@example.com", "Alpha")
	_, b := s.env.approvedBusiness(s.T(), "b@example.com", "Bravo")
	s.rate(a.ID, 4.8, 124)
	s.rate(b.ID, 4.6, 89)

	names := func(sort string) []string {
		results, err := s.env.businesses.Search(s.ctx, SearchParams{Sort: sort})
		s.Require().NoError(err)
		out := []string{}
		for _, r := range results {
			out = append(out, r.Name)
		}
		return out
	}

	s.Equal([]string{"Alpha", "Bravo"}, names("rating"))
	s.Equal([]string{"Alpha", "Bravo"}, names("reviews"))

	s.rate(b.ID, 4.6, 130)
	s.Equal([]string{"Bravo", "Alpha"}, names("reviews"))
	s.Equal([]string{"Alpha", "Bravo"}, names("rating"))
	s.Equal([]string{"Alpha", "Bravo"}, names(""), "rating is the default sort")
}

func (s *ServiceSuite) TestSearchFilters() {
	food := s.env.db.AddCategory("Food & Beverages", "food")

	_, cafe := s.env.approvedBusiness(s.T(), "cafe@example.com", "Sunrise Cafe")
	_, err := s.env.businesses.UpdateOwned(s.ctx, cafe.OwnerID, &UpdateBusinessRequest{
		CategoryID: &food.ID,
		Pincode:    strPtr("411001"),
	})
	s.Require().NoError(err)

	s.env.approvedBusiness(s.T(), "tailor@example.com", "City Tailors")
	s.env.registerOwner(s.T(), "pending@example.com", "Sunrise Bakery")

	search := func(p SearchParams) []models.Business {
		results, err := s.env.businesses.Search(s.ctx, p)
		s.Require().NoError(err)
		return results
	}

	s.Len(search(SearchParams{}), 2, "pending listings never appear")

	results := search(SearchParams{Search: "SUNRISE"})
	s.Require().Len(results, 1)
	s.Equal("Sunrise Cafe", results[0].Name)

	s.Len(search(SearchParams{Location: "4110"}), 1)
	s.Len(search(SearchParams{Location: "maharashtra"}), 2)
	s.Len(search(SearchParams{Location: "Mumbai"}), 0)

	s.Len(search(SearchParams{Category: "food"}), 1)
	s.Len(search(SearchParams{Category: "Food & Beverages"}), 1)
	s.Empty(search(SearchParams{Category: "unknown"}))
}

func (s *ServiceSuite) TestFeatured() {
	_, a := s.env.approvedBusiness(s.T(), "a@example.com", "Alpha")
	_, b := s.env.approvedBusiness(s.T(), "b@example.com", "Bravo")
	_, c := s.env.approvedBusiness(s.T(), "c@example.com", "Charlie")
	s.rate(a.ID, 3.0, 10)
	s.rate(b.ID, 4.9, 2)
	s.rate(c.ID, 4.1, 50)

	featured, err := s.env.businesses.Featured(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(featured, 2)
	s.Equal("Bravo", featured[0].Name)
	s.Equal("Charlie", featured[1].Name)

	featured, err = s.env.businesses.Featured(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(featured, 3)
}
