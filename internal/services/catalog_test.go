package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/bizdir-backend/internal/session"
)

func (s *ServiceSuite) TestProductLifecycle() {
	owner, business := s.env.approvedBusiness(s.T(), "owner@example.com", "Corner Store")
	ownerID := owner.User.ID

	unpriced, err := s.env.products.Create(s.ctx, ownerID, &CreateProductRequest{Name: "Custom cake"})
	s.Require().NoError(err)
	s.False(unpriced.Price.Valid)
	s.True(unpriced.Purchasable)

	raw, err := json.Marshal(unpriced)
	s.Require().NoError(err)
	s.Contains(string(raw), `"price":null`)
	s.Contains(string(raw), `"purchasable":true`)

	free := decimal.Zero
	zero, err := s.env.products.Create(s.ctx, ownerID, &CreateProductRequest{Name: "Sample", Price: &free})
	s.Require().NoError(err)
	s.True(zero.Price.Valid, "a zero price is distinct from no price")

	raw, err = json.Marshal(zero)
	s.Require().NoError(err)
	s.Contains(string(raw), `"price":"0"`)

	negative := decimal.NewFromInt(-1)
	_, err = s.env.products.Create(s.ctx, ownerID, &CreateProductRequest{Name: "Broken", Price: &negative})
	s.ErrorIs(err, ErrInvalidPrice)

	off := false
	updatesBefore := s.env.db.Calls["Products.Update"]
	hidden, err := s.env.products.Create(s.ctx, ownerID, &CreateProductRequest{Name: "Seasonal", IsAvailable: &off})
	s.Require().NoError(err)
	s.False(hidden.IsAvailable)
	s.False(hidden.Purchasable)
	s.Equal(updatesBefore, s.env.db.Calls["Products.Update"], "an unavailable product is created in a single write")

	toggled, err := s.env.products.SetAvailability(s.ctx, ownerID, hidden.ID, true)
	s.Require().NoError(err)
	s.True(toggled.Purchasable)

	price := decimal.RequireFromString("249.50")
	updated, err := s.env.products.Update(s.ctx, ownerID, unpriced.ID, &UpdateProductRequest{Price: &price})
	s.Require().NoError(err)
	s.True(updated.Price.Decimal.Equal(price))

	cleared, err := s.env.products.Update(s.ctx, ownerID, unpriced.ID, &UpdateProductRequest{ClearPrice: true})
	s.Require().NoError(err)
	s.False(cleared.Price.Valid)

	public, err := s.env.products.ListForBusiness(s.ctx, business.Slug, nil)
	s.Require().NoError(err)
	s.Len(public, 3)

	s.Require().NoError(s.env.products.Delete(s.ctx, ownerID, zero.ID))
	s.ErrorIs(s.env.products.Delete(s.ctx, ownerID, zero.ID), ErrProductNotFound)

	mine, err := s.env.products.ListOwned(s.ctx, ownerID)
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *ServiceSuite) TestProductOwnership() {
	alice, _ := s.env.approvedBusiness(s.T(), "alice@example.com", "Alpha")
	bob, _ := s.env.approvedBusiness(s.T(), "bob@example.com", "Bravo")

	product, err := s.env.products.Create(s.ctx, alice.User.ID, &CreateProductRequest{Name: "Tea"})
	s.Require().NoError(err)

	_, err = s.env.products.SetAvailability(s.ctx, bob.User.ID, product.ID, false)
	s.ErrorIs(err, ErrNotOwner)
	s.ErrorIs(s.env.products.Delete(s.ctx, bob.User.ID, product.ID), ErrNotOwner)

	_, err = s.env.products.Create(s.ctx, uuid.New(), &CreateProductRequest{Name: "Orphan"})
	s.ErrorIs(err, ErrBusinessNotFound)
}

func (s *ServiceSuite) TestProductsOfHiddenBusiness() {
	owner := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")

	_, err := s.env.products.Create(s.ctx, owner.User.ID, &CreateProductRequest{Name: "Tea"})
	s.Require().NoError(err, "owners manage products before approval")

	_, err = s.env.products.ListForBusiness(s.ctx, owner.Business.Slug, nil)
	s.ErrorIs(err, ErrBusinessNotFound)

	mine, err := s.env.products.ListForBusiness(s.ctx, owner.Business.Slug, owner.Session)
	s.Require().NoError(err)
	s.Len(mine, 1)
}

func (s *ServiceSuite) TestReviewAggregates() {
	_, business := s.env.approvedBusiness(s.T(), "owner@example.com", "Corner Store")
	reviewers := []*session.Session{}
	for _, email := range []string{"r1@example.com", "r2@example.com", "r3@example.com"} {
		resp, err := s.env.auth.Register(s.ctx, customerForm(email))
		s.Require().NoError(err)
		reviewers = append(reviewers, resp.Session)
	}

	var ids []uuid.UUID
	for i, rating := range []int{5, 4, 4} {
		review, err := s.env.reviews.Create(s.ctx, reviewers[i], business.Slug, &ReviewRequest{Rating: rating, Comment: "good"})
		s.Require().NoError(err)
		ids = append(ids, review.ID)
	}

	current, err := s.env.businesses.Get(s.ctx, business.Slug, nil)
	s.Require().NoError(err)
	s.Require().NotNil(current.AverageRating)
	s.InDelta(4.33, *current.AverageRating, 0.001)
	s.Equal(int64(3), current.TotalReviews)

	_, err = s.env.reviews.Update(s.ctx, reviewers[0], ids[0], &ReviewRequest{Rating: 1})
	s.Require().NoError(err)
	current, _ = s.env.businesses.Get(s.ctx, business.Slug, nil)
	s.InDelta(3.0, *current.AverageRating, 0.001)

	s.ErrorIs(s.env.reviews.Delete(s.ctx, reviewers[1], ids[0]), ErrNotOwner)
	for i, id := range ids {
		s.Require().NoError(s.env.reviews.Delete(s.ctx, reviewers[i], id))
	}
	current, _ = s.env.businesses.Get(s.ctx, business.Slug, nil)
	s.Nil(current.AverageRating)
	s.Zero(current.TotalReviews)
	s.Zero(current.Rating())
}

func (s *ServiceSuite) TestReviewRules() {
	owner, business := s.env.approvedBusiness(s.T(), "owner@example.com", "Corner Store")
	customer, err := s.env.auth.Register(s.ctx, customerForm("c@example.com"))
	s.Require().NoError(err)

	_, err = s.env.reviews.Create(s.ctx, owner.Session, business.Slug, &ReviewRequest{Rating: 5})
	s.ErrorIs(err, ErrOwnBusinessReview)

	_, err = s.env.reviews.Create(s.ctx, customer.Session, business.Slug, &ReviewRequest{Rating: 6})
	s.ErrorIs(err, ErrValidation)

	_, err = s.env.reviews.Create(s.ctx, customer.Session, business.Slug, &ReviewRequest{Rating: 4})
	s.Require().NoError(err)
	_, err = s.env.reviews.Create(s.ctx, customer.Session, business.Slug, &ReviewRequest{Rating: 3})
	s.ErrorIs(err, ErrDuplicateReview)

	pending := s.env.registerOwner(s.T(), "p@example.com", "Pending Place")
	_, err = s.env.reviews.Create(s.ctx, customer.Session, pending.Business.Slug, &ReviewRequest{Rating: 4})
	s.ErrorIs(err, ErrBusinessNotFound)

	mine, err := s.env.reviews.ListMine(s.ctx, customer.User.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(business.ID, mine[0].Business.ID)

	listed, err := s.env.reviews.ListForBusiness(s.ctx, business.ID.String(), nil)
	s.Require().NoError(err)
	s.Len(listed, 1)

	n, err := s.env.reviews.RecomputeAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *ServiceSuite) TestProfileUpdate() {
	resp, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)

	profile, err := s.env.profiles.Update(s.ctx, resp.User.ID, &UpdateProfileRequest{
		LastName: strPtr("Rao"),
		Bio:      strPtr("  Loves local food  "),
	})
	s.Require().NoError(err)
	s.Equal("Asha", profile.FirstName)
	s.Equal("Rao", profile.LastName)
	s.Equal("Loves local food", profile.Bio)

	_, err = s.env.profiles.Update(s.ctx, resp.User.ID, &UpdateProfileRequest{AvatarURL: strPtr("not a url")})
	s.ErrorIs(err, ErrValidation)

	_, err = s.env.profiles.Get(s.ctx, uuid.New())
	s.ErrorIs(err, ErrProfileNotFound)
}

func (s *ServiceSuite) TestCategoryResolve() {
	s.env.db.AddCategory("Health & Wellness", "health")

	c, err := s.env.categories.Resolve(s.ctx, "HEALTH")
	s.Require().NoError(err)
	s.Equal("health", c.Slug)

	_, err = s.env.categories.Resolve(s.ctx, "toys")
	s.ErrorIs(err, ErrCategoryNotFound)
}
