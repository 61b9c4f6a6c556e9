// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthSessionExpired     = "auth.session_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthBusinessSignUpFail = "auth.business_signup_failed"
	KeyAuthTokenRefreshed     = "auth.token_refreshed"
	KeyAuthBusinessOnly       = "auth.business_only"

	// Profile
	KeyProfileUpdated  = "profile.updated"
	KeyProfileNotFound = "profile.not_found"

	// Businesses
	KeyBusinessCreated     = "business.created"
	KeyBusinessUpdated     = "business.updated"
	KeyBusinessNotFound    = "business.not_found"
	KeyBusinessSlugTaken   = "business.slug_taken"
	KeyBusinessExists      = "business.exists"
	KeyBusinessNotApproved = "business.not_approved"
	KeyBusinessMediaSaved  = "business.media_saved"
	KeyCategoryNotFound    = "category.not_found"

	// Products
	KeyProductCreated      = "product.created"
	KeyProductUpdated      = "product.updated"
	KeyProductDeleted      = "product.deleted"
	KeyProductNotFound     = "product.not_found"
	KeyProductInvalidPrice = "product.invalid_price"

	// Reviews
	KeyReviewCreated   = "review.created"
	KeyReviewUpdated   = "review.updated"
	KeyReviewDeleted   = "review.deleted"
	KeyReviewNotFound  = "review.not_found"
	KeyReviewDuplicate = "review.duplicate"
	KeyReviewOwnListed = "review.own_business"

	// Admin
	KeyAdminAccessDenied  = "admin.access_denied"
	KeyAdminStatusUpdated = "admin.status_updated"
	KeyAdminInvalidStatus = "admin.invalid_status"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationMismatch = "validation.password_mismatch"
	KeyValidationTerms    = "validation.terms_required"

	// Errors
	KeyErrorInternal     = "error.internal"
	KeyErrorRateLimit    = "error.rate_limit"
	KeyErrorBodyTooLarge = "error.body_too_large"
	KeyErrorFileTooLarge = "error.file_too_large"
	KeyErrorInvalidFile  = "error.invalid_file_type"
	KeyErrorNotFound     = "error.not_found"
)
