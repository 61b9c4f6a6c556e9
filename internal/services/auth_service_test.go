package services

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

func (s *ServiceSuite) TestRegisterPasswordMismatchTouchesNothing() {
	form := customerForm("asha@example.com")
	form.ConfirmPassword = "different"

	resp, err := s.env.auth.Register(s.ctx, form)

	s.Nil(resp)
	s.ErrorIs(err, ErrValidation)
	var verrs validator.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal("eqfield", verrs[0].Tag())
	s.Zero(s.env.db.TotalCalls(), "validation failures must not reach the store")
}

func (s *ServiceSuite) TestRegisterRequiresTerms() {
	form := customerForm("asha@example.com")
	form.AgreeTerms = false

	_, err := s.env.auth.Register(s.ctx, form)

	s.ErrorIs(err, ErrValidation)
	s.Zero(s.env.db.TotalCalls())
}

func (s *ServiceSuite) TestRegisterBusinessRequiresDetails() {
	form := businessForm("owner@example.com", "Corner Store")
	form.Business = nil

	_, err := s.env.auth.Register(s.ctx, form)
	s.ErrorIs(err, ErrValidation)

	form = businessForm("owner@example.com", "Corner Store")
	form.Business.City = ""
	_, err = s.env.auth.Register(s.ctx, form)
	s.ErrorIs(err, ErrValidation)

	s.Zero(s.env.db.TotalCalls())
}

func (s *ServiceSuite) TestRegisterRejectsBlankBusinessFields() {
	form := businessForm("blank@example.com", "   ")
	form.Business.City = "  "

	resp, err := s.env.auth.Register(s.ctx, form)

	s.Nil(resp)
	s.ErrorIs(err, ErrValidation)
	var verrs validator.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	s.Equal("notblank", fields["name"])
	s.Equal("notblank", fields["city"])
	s.Zero(s.env.db.TotalCalls(), "blank details must not create the identity")

	form = customerForm("blank@example.com")
	form.FirstName = "\t "
	_, err = s.env.auth.Register(s.ctx, form)
	s.ErrorIs(err, ErrValidation)
	s.Zero(s.env.db.TotalCalls())
}

func (s *ServiceSuite) TestRegisterCustomerIgnoresBusinessDetails() {
	form := customerForm("asha@example.com")
	form.Business = &BusinessRequest{}

	resp, err := s.env.auth.Register(s.ctx, form)
	s.Require().NoError(err)

	s.Nil(resp.Business)
	s.Equal(models.UserTypeCustomer, resp.Session.UserType)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("Bearer", resp.TokenType)
	s.Require().NotNil(resp.Profile)
	s.Equal(resp.User.ID, resp.Profile.ID)
	s.False(resp.Profile.IsBusinessOwner)

	cached, ok := s.env.userTypes.Get(resp.User.ID)
	s.True(ok)
	s.Equal(models.UserTypeCustomer, cached)

	s.env.notifier.waitFor(s.T(), "welcome:asha@example.com")
}

func (s *ServiceSuite) TestRegisterBusinessCreatesPendingListing() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "My Shop!!")

	s.Equal(models.BusinessStatusPending, resp.Business.Status)
	s.Equal("my-shop!!", resp.Business.Slug)
	s.Equal(resp.User.ID, resp.Business.OwnerID)
	s.True(resp.Profile.IsBusinessOwner)
	s.Equal(models.UserTypeBusiness, resp.Session.UserType)

	s.env.notifier.waitFor(s.T(), "submitted:my-shop!!")
}

func (s *ServiceSuite) TestRegisterBusinessPartialFailure() {
	s.env.db.FailBusinessCreate = errors.New("connection reset")

	resp, err := s.env.auth.Register(s.ctx, businessForm("owner@example.com", "Corner Store"))

	var partial *PartialSignUpError
	s.Require().True(errors.As(err, &partial))
	s.Require().NotNil(partial.Auth)
	s.NotEmpty(partial.Auth.AccessToken)
	s.Nil(partial.Auth.Business)
	s.Same(resp, partial.Auth)

	// the identity stays committed
	user, findErr := s.env.db.Store().Users.FindByEmail(s.ctx, "owner@example.com")
	s.Require().NoError(findErr)
	s.Equal(models.UserTypeBusiness, user.UserType)

	// and the owner can retry the business step on its own
	business, err := s.env.businesses.Create(s.ctx, user.ID, businessForm("", "Corner Store").Business)
	s.Require().NoError(err)
	s.Equal(models.BusinessStatusPending, business.Status)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)

	_, err = s.env.auth.Register(s.ctx, customerForm("ASHA@example.com"))
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *ServiceSuite) TestLogin() {
	_, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)

	resp, err := s.env.auth.Login(s.ctx, &LoginRequest{Email: "asha@example.com", Password: "secret123"})
	s.Require().NoError(err)
	s.NotNil(resp.User.LastSignInAt)
	s.Equal("Asha", resp.Profile.FirstName)

	_, err = s.env.auth.Login(s.ctx, &LoginRequest{Email: "asha@example.com", Password: "wrong"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.env.auth.Login(s.ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLogoutRevokesTokens() {
	resp, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)

	events, cancel := s.env.broker.Subscribe(resp.User.ID)
	defer cancel()

	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)

	current, err := s.env.auth.ResolveSession(s.ctx, claims)
	s.Require().NoError(err)
	s.Require().NotNil(current)

	s.Require().NoError(s.env.auth.Logout(s.ctx, resp.User.ID))

	event := <-events
	s.Nil(event.Session)

	current, err = s.env.auth.ResolveSession(s.ctx, claims)
	s.NoError(err)
	s.Nil(current, "tokens issued before sign-out no longer resolve")

	_, err = s.env.auth.RefreshToken(s.ctx, resp.RefreshToken)
	s.ErrorIs(err, ErrSessionExpired)

	_, ok := s.env.userTypes.Get(resp.User.ID)
	s.False(ok)
}

func (s *ServiceSuite) TestRefreshToken() {
	resp, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)

	refreshed, err := s.env.auth.RefreshToken(s.ctx, resp.RefreshToken)
	s.Require().NoError(err)
	s.NotEmpty(refreshed.AccessToken)

	_, err = s.env.auth.RefreshToken(s.ctx, "garbage")
	s.ErrorIs(err, ErrSessionExpired)
}

func (s *ServiceSuite) TestResolveSessionUserType() {
	resp := s.env.registerOwner(s.T(), "owner@example.com", "Corner Store")
	userID := resp.User.ID
	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)

	// a stale cache entry is corrected from the stored value
	s.env.userTypes.Set(userID, models.UserTypeCustomer)
	current, err := s.env.auth.ResolveSession(s.ctx, claims)
	s.Require().NoError(err)
	s.Equal(models.UserTypeBusiness, current.UserType)
	cached, _ := s.env.userTypes.Get(userID)
	s.Equal(models.UserTypeBusiness, cached)

	// the cache answers only when nothing is stored
	s.env.db.SetUserType(userID, "")
	current, err = s.env.auth.ResolveSession(s.ctx, claims)
	s.Require().NoError(err)
	s.Equal(models.UserTypeBusiness, current.UserType)

	s.Require().NotNil(current.Profile)
	s.Equal(userID, current.Profile.ID)
	s.False(current.IsAdmin)
}

func (s *ServiceSuite) TestResolveSessionAdmin() {
	resp, err := s.env.auth.Register(s.ctx, customerForm("Admin@Example.com"))
	s.Require().NoError(err)
	s.True(resp.Session.IsAdmin)

	other, err := s.env.auth.Register(s.ctx, customerForm("other@example.com"))
	s.Require().NoError(err)
	s.False(other.Session.IsAdmin)
}

func (s *ServiceSuite) TestSignInPublishesSession() {
	_, err := s.env.auth.Register(s.ctx, customerForm("asha@example.com"))
	s.Require().NoError(err)
	user, err := s.env.db.Store().Users.FindByEmail(s.ctx, "asha@example.com")
	s.Require().NoError(err)

	events, cancel := s.env.broker.Subscribe(user.ID)
	defer cancel()

	_, err = s.env.auth.Login(s.ctx, &LoginRequest{Email: "asha@example.com", Password: "secret123"})
	s.Require().NoError(err)

	var event session.Event
	s.Require().Eventually(func() bool {
		select {
		case event = <-events:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	s.Require().NotNil(event.Session)
	s.Equal(user.ID, event.Session.UserID)
}
