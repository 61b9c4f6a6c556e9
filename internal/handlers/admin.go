// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type AdminHandler struct {
	moderationService *services.ModerationService
}

func NewAdminHandler(moderationService *services.ModerationService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.moderationService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/businesses?status=pending
func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	status := c.DefaultQuery("status", string(models.BusinessStatusPending))

	businesses, err := h.moderationService.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(businesses, utils.GetPaginationParams(c)))
}

// GET /admin/businesses/partition
func (h *AdminHandler) Partition(c *gin.Context) {
	tabs, err := h.moderationService.Partition(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, tabs)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PUT /admin/businesses/:id/status
func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	h.decide(c, req.Status)
}

// PUT /admin/businesses/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.decide(c, string(models.BusinessStatusApproved))
}

// PUT /admin/businesses/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	h.decide(c, string(models.BusinessStatusRejected))
}

func (h *AdminHandler) decide(c *gin.Context, status string) {
	businessID, ok := pathID(c, "business")
	if !ok {
		return
	}

	admin := middleware.CurrentSession(c)
	business, err := h.moderationService.SetStatus(c.Request.Context(), admin.UserID, businessID, status, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyAdminStatusUpdated, business.Status),
		"business": business,
	})
}
