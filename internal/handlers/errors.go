// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// respondError maps service errors onto the response envelope. Anything it
// does not recognise is logged and reported as an internal error.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, "", err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrSessionExpired):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthSessionExpired))

	case errors.Is(err, services.ErrEmailTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrBusinessExists):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyBusinessExists))
	case errors.Is(err, services.ErrSlugTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyBusinessSlugTaken))
	case errors.Is(err, services.ErrDuplicateReview):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyReviewDuplicate))

	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "error")
	case errors.Is(err, services.ErrProfileNotFound):
		utils.NotFoundResponse(c, "profile")
	case errors.Is(err, services.ErrBusinessNotFound):
		utils.NotFoundResponse(c, "business")
	case errors.Is(err, services.ErrCategoryNotFound):
		utils.NotFoundResponse(c, "category")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrReviewNotFound):
		utils.NotFoundResponse(c, "review")

	case errors.Is(err, services.ErrBusinessNotApproved):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyBusinessNotApproved))
	case errors.Is(err, services.ErrNotBusinessOwner):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthBusinessOnly))
	case errors.Is(err, services.ErrOwnBusinessReview):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyReviewOwnListed))
	case errors.Is(err, services.ErrNotOwner):
		utils.ForbiddenResponse(c, "")

	case errors.Is(err, services.ErrInvalidPrice):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductInvalidPrice), nil)
	case errors.Is(err, listing.ErrInvalidStatus):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAdminInvalidStatus), nil)
	case errors.Is(err, services.ErrInvalidMediaKind):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "kind"), nil)
	case errors.Is(err, services.ErrInvalidFile):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyErrorInvalidFile), err.Error())

	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes the body and reports malformed input itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// pathID parses the :id route parameter. A malformed id is reported as
// a missing resource.
func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, resource)
		return uuid.Nil, false
	}
	return id, true
}

// requestMeta identifies the caller of an admin action.
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
