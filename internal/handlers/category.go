// internal/handlers/category.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	businessService *services.BusinessService
}

func NewCategoryHandler(categoryService *services.CategoryService, businessService *services.BusinessService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		businessService: businessService,
	}
}

// GET /categories?category=slug
// With a category selected the approved businesses in it are returned too.
// An unknown category selects nothing and lists no businesses.
func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.categoryService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	key := c.Query("category")
	if key == "" {
		utils.SuccessResponse(c, gin.H{"categories": categories})
		return
	}

	var selected *models.Category
	businesses := []models.Business{}
	selected, err = h.categoryService.Resolve(ctx, key)
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		selected = nil
	case err != nil:
		respondError(c, err)
		return
	default:
		businesses, err = h.businessService.Search(ctx, services.SearchParams{
			Category: selected.Slug,
			Sort:     c.Query("sort"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
		"selected":   selected,
		"businesses": businesses,
	})
}
