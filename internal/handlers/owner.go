// internal/handlers/owner.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// OwnerHandler backs the business dashboard: the owner's listing, its
// media and its product catalog.
type OwnerHandler struct {
	businessService *services.BusinessService
	productService  *services.ProductService
	storageService  *services.StorageService
}

func NewOwnerHandler(businessService *services.BusinessService, productService *services.ProductService, storageService *services.StorageService) *OwnerHandler {
	return &OwnerHandler{
		businessService: businessService,
		productService:  productService,
		storageService:  storageService,
	}
}

// GET /owner/business
func (h *OwnerHandler) GetBusiness(c *gin.Context) {
	business, err := h.businessService.GetOwned(c.Request.Context(), middleware.CurrentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, business)
}

// POST /owner/business
// Also the retry path after a sign-up whose business step failed.
func (h *OwnerHandler) CreateBusiness(c *gin.Context) {
	var req services.BusinessRequest
	if !bindJSON(c, &req) {
		return
	}

	business, err := h.businessService.Create(c.Request.Context(), middleware.CurrentSession(c).UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, business)
}

// PUT /owner/business
func (h *OwnerHandler) UpdateBusiness(c *gin.Context) {
	var req services.UpdateBusinessRequest
	if !bindJSON(c, &req) {
		return
	}

	business, err := h.businessService.UpdateOwned(c.Request.Context(), middleware.CurrentSession(c).UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, business)
}

// POST /owner/business/media (multipart: kind=logo|cover, file)
func (h *OwnerHandler) UploadMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ctx := c.Request.Context()
	ownerID := middleware.CurrentSession(c).UserID

	kind := c.PostForm("kind")
	if kind != "logo" && kind != "cover" {
		respondError(c, services.ErrInvalidMediaKind)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), nil)
		return
	}

	uploaded, err := h.storageService.UploadFile(ctx, header, h.storageService.GetDefaultUploadOptions(kind))
	if err != nil {
		respondError(c, err)
		return
	}

	business, err := h.businessService.SetMedia(ctx, ownerID, kind, uploaded.URL)
	if err != nil {
		if delErr := h.storageService.DeleteFile(ctx, uploaded.Key); delErr != nil {
			logrus.WithError(delErr).WithField("key", uploaded.Key).Warn("Failed to remove orphaned upload")
		}
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessMediaSaved),
		"upload":   uploaded,
		"business": business,
	})
}

// GET /owner/products
func (h *OwnerHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListOwned(c.Request.Context(), middleware.CurrentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// POST /owner/products
func (h *OwnerHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), middleware.CurrentSession(c).UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /owner/products/:id
func (h *OwnerHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c, "product")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), middleware.CurrentSession(c).UserID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// PUT /owner/products/:id/availability
func (h *OwnerHandler) SetAvailability(c *gin.Context) {
	productID, ok := pathID(c, "product")
	if !ok {
		return
	}

	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.SetAvailability(c.Request.Context(), middleware.CurrentSession(c).UserID, productID, *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /owner/products/:id
func (h *OwnerHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), middleware.CurrentSession(c).UserID, productID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted),
	})
}
