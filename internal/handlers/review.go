// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /businesses/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req services.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, review)
}

// PUT /reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, ok := pathID(c, "review")
	if !ok {
		return
	}

	var req services.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), middleware.CurrentSession(c), reviewID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// DELETE /reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, ok := pathID(c, "review")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), middleware.CurrentSession(c), reviewID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyReviewDeleted),
	})
}
