// internal/services/errors.go
package services

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrSessionExpired      = errors.New("session is no longer valid")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrBusinessNotFound    = errors.New("business not found")
	ErrBusinessExists      = errors.New("owner already has a business")
	ErrSlugTaken           = errors.New("business slug already taken")
	ErrBusinessNotApproved = errors.New("business is not approved")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrNotOwner            = errors.New("resource belongs to another user")
	ErrNotBusinessOwner    = errors.New("account is not a business account")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrReviewNotFound      = errors.New("review not found")
	ErrDuplicateReview     = errors.New("business already reviewed by this user")
	ErrOwnBusinessReview   = errors.New("owners cannot review their own business")
	ErrInvalidMediaKind    = errors.New("media kind must be logo or cover")
	ErrInvalidFile         = errors.New("file rejected")
)

// PartialSignUpError reports a business sign-up whose identity was created
// but whose business row was not. Auth carries the issued session so the
// owner can retry the business step.
type PartialSignUpError struct {
	Auth *AuthResponse
	Err  error
}

func (e *PartialSignUpError) Error() string {
	return "account created but business registration failed: " + e.Err.Error()
}

func (e *PartialSignUpError) Unwrap() error {
	return e.Err
}

// dispatch runs fn off the request path. Failures are logged and dropped.
func dispatch(task string, fields logrus.Fields, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			logrus.WithFields(fields).WithError(err).Warnf("Background %s failed", task)
		}
	}()
}
