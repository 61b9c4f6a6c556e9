// internal/handlers/profile.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// ProfileHandler backs the customer dashboard.
type ProfileHandler struct {
	profileService *services.ProfileService
	reviewService  *services.ReviewService
}

func NewProfileHandler(profileService *services.ProfileService, reviewService *services.ReviewService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		reviewService:  reviewService,
	}
}

// GET /me/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), middleware.CurrentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// PUT /me/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), middleware.CurrentSession(c).UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// GET /me/reviews
func (h *ProfileHandler) MyReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListMine(c.Request.Context(), middleware.CurrentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(reviews, utils.GetPaginationParams(c)))
}
