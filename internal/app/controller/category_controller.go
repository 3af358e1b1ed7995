package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
	notifier        Notifier
}

func NewCategoryController(categoryService service.CategoryService, notifier Notifier) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
		notifier:        notifier,
	}
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListCategories
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		respondInternal(c, err, "fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory
// POST /api/v1/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	category, err := ctrl.categoryService.CreateCategory(req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryExists):
			apperrors.Conflict(c, apperrors.CategoryExists, "Category already exists")
		case errors.Is(err, service.ErrInvalidCategory):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
		default:
			respondInternal(c, err, "create category")
		}
		return
	}

	if userID, ok := middleware.GetUserID(c); ok {
		notify(ctrl.notifier, userID, fmt.Sprintf("Category %q created successfully.", category.Name))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}
