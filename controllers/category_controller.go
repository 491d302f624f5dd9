package controllers

import (
	"net/http"

	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryController struct {
	catalogService services.CatalogService
}

func NewCategoryController(catalogService services.CatalogService) *CategoryController {
	return &CategoryController{catalogService: catalogService}
}

// ListCategories returns all categories ordered by name. Public, the
// storefront uses it for filter buttons.
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, svcErr := ctrl.catalogService.ListCategories(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// SaveCategory creates a category, or updates one when the payload
// carries an id. The slug is derived from the name either way.
func (ctrl *CategoryController) SaveCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, svcErr := ctrl.catalogService.SaveCategory(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if req.ID == nil {
		c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "category": category})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "category": category})
}

func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	if svcErr := ctrl.catalogService.DeleteCategory(c.Request.Context(), id); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
