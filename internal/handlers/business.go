// internal/handlers/business.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// BusinessHandler serves the public directory.
type BusinessHandler struct {
	businessService *services.BusinessService
	productService  *services.ProductService
	reviewService   *services.ReviewService
}

func NewBusinessHandler(businessService *services.BusinessService, productService *services.ProductService, reviewService *services.ReviewService) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
		productService:  productService,
		reviewService:   reviewService,
	}
}

// GET /businesses?search=&location=&category=&sort=
func (h *BusinessHandler) Search(c *gin.Context) {
	var params services.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	businesses, err := h.businessService.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, businesses, gin.H{"total": len(businesses)})
}

// GET /businesses/featured
func (h *BusinessHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	businesses, err := h.businessService.Featured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, businesses)
}

// GET /businesses/:id
func (h *BusinessHandler) Get(c *gin.Context) {
	business, err := h.businessService.Get(c.Request.Context(), c.Param("id"), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, business)
}

// GET /businesses/:id/products
func (h *BusinessHandler) Products(c *gin.Context) {
	products, err := h.productService.ListForBusiness(c.Request.Context(), c.Param("id"), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /businesses/:id/reviews
func (h *BusinessHandler) Reviews(c *gin.Context) {
	reviews, err := h.reviewService.ListForBusiness(c.Request.Context(), c.Param("id"), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(reviews, utils.GetPaginationParams(c)))
}
