// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type AuthService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	businesses *BusinessService
	userTypes  *session.UserTypeCache
	broker     *session.Broker
	notifier   Notifier
	metrics    *metrics.Metrics
	cfg        *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up form. Business is required for business
// accounts and ignored for customers.
type RegisterRequest struct {
	Email           string           `json:"email" validate:"required,email,max=255"`
	Password        string           `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string           `json:"confirm_password" validate:"required,eqfield=Password"`
	AgreeTerms      bool             `json:"agree_terms" validate:"eq=true"`
	UserType        models.UserType  `json:"user_type" validate:"required,oneof=customer business"`
	FirstName       string           `json:"first_name" validate:"required,notblank,max=100"`
	LastName        string           `json:"last_name" validate:"max=100"`
	Phone           string           `json:"phone,omitempty" validate:"omitempty,phone"`
	Business        *BusinessRequest `json:"business,omitempty" validate:"required_if=UserType business"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User         *models.User     `json:"user"`
	Profile      *models.Profile  `json:"profile,omitempty"`
	Business     *models.Business `json:"business,omitempty"`
	Session      *session.Session `json:"session"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"` // in seconds
}

func NewAuthService(
	store *repository.Store,
	businesses *BusinessService,
	userTypes *session.UserTypeCache,
	broker *session.Broker,
	notifier Notifier,
	m *metrics.Metrics,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:      store.Users,
		profiles:   store.Profiles,
		businesses: businesses,
		userTypes:  userTypes,
		broker:     broker,
		notifier:   notifier,
		metrics:    m,
		cfg:        cfg,
	}
}

// Register creates the identity and profile, then for business accounts the
// business listing. The two steps commit separately: if the second fails the
// identity stays and a *PartialSignUpError carrying the session is returned.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.UserType != models.UserTypeBusiness {
		req.Business = nil
	}
	// Nothing is written unless the whole form, business details included,
	// is valid.
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.RecordSignUpFailure("validation")
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	user := &models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		UserType:       req.UserType,
		SessionVersion: 1,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           req.Phone,
		IsBusinessOwner: req.UserType == models.UserTypeBusiness,
	}

	if err := s.users.Create(ctx, user, profile); err != nil {
		s.metrics.RecordSignUpFailure("identity")
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp, err := s.issue(user, profile)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSignUp(string(user.UserType))

	dispatch("welcome email", logrus.Fields{"user_id": user.ID}, func() error {
		return s.notifier.SendWelcome(user, profile)
	})

	if req.UserType == models.UserTypeBusiness {
		business, err := s.businesses.Create(ctx, user.ID, req.Business)
		if err != nil {
			s.metrics.RecordSignUpFailure("business")
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"email":   user.Email,
			}).WithError(err).Error("Business registration failed after identity was created")
			return resp, &PartialSignUpError{Auth: resp, Err: err}
		}
		resp.Business = business
	}

	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordSignIn("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		s.metrics.RecordSignIn("invalid")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.RecordSignIn(ctx, user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record sign-in time")
	}
	user.LastSignInAt = &now

	profile, err := s.loadProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(user, profile)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSignIn("success")
	return resp, nil
}

// Logout revokes every token issued to userID.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.BumpSessionVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to end session: %w", err)
	}

	s.userTypes.Delete(userID)
	s.broker.Publish(session.Event{UserID: userID})
	return nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", ErrSessionExpired)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.SessionVersion != claims.SessionVersion {
		return nil, ErrSessionExpired
	}

	profile, err := s.loadProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(user, profile)
}

// ResolveSession turns access token claims into the current session. It
// returns nil when the identity is gone or the token has been revoked.
func (s *AuthService) ResolveSession(ctx context.Context, claims *utils.JWTClaims) (*session.Session, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.SessionVersion != claims.SessionVersion {
		return nil, nil
	}

	profile, err := s.loadProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.sessionFor(user, profile), nil
}

// resolveUserType prefers the stored value and keeps the cache in step with
// it. The cache only answers for identities stored without a type.
func (s *AuthService) resolveUserType(user *models.User) models.UserType {
	if user.UserType.Valid() {
		s.userTypes.Set(user.ID, user.UserType)
		return user.UserType
	}
	if cached, ok := s.userTypes.Get(user.ID); ok {
		return cached
	}
	return user.UserType
}

func (s *AuthService) sessionFor(user *models.User, profile *models.Profile) *session.Session {
	return &session.Session{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: s.resolveUserType(user),
		IsAdmin:  s.cfg.Admin.IsAdmin(user.Email),
		Profile:  profile,
	}
}

func (s *AuthService) loadProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// issue signs a token pair for user and announces the new session.
func (s *AuthService) issue(user *models.User, profile *models.Profile) (*AuthResponse, error) {
	current := s.sessionFor(user, profile)

	accessToken, err := utils.GenerateJWT(
		user.ID,
		user.Email,
		string(current.UserType),
		user.SessionVersion,
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, user.SessionVersion, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.broker.Publish(session.Event{UserID: user.ID, Session: current})

	return &AuthResponse{
		User:         user,
		Profile:      profile,
		Session:      current,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
