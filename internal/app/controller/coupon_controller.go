package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CouponController struct {
	couponService service.CouponService
	notifier      Notifier
}

func NewCouponController(couponService service.CouponService, notifier Notifier) *CouponController {
	return &CouponController{
		couponService: couponService,
		notifier:      notifier,
	}
}

type CreateCouponRequest struct {
	Code           string           `json:"code" binding:"required,coupon_code"`
	Type           model.CouponType `json:"type" binding:"required,oneof=percentage fixed"`
	Discount       float64          `json:"discount" binding:"required,gt=0"`
	CategoryID     uint             `json:"category_id" binding:"required"`
	UsesLeft       int              `json:"uses_left" binding:"min=0"`
	ExpirationDate time.Time        `json:"expiration_date" binding:"required"`
	UserID         *uint            `json:"user_id"`
}

type UpdateCouponRequest struct {
	Code           *string           `json:"code" binding:"omitempty,coupon_code"`
	Type           *model.CouponType `json:"type" binding:"omitempty,oneof=percentage fixed"`
	Discount       *float64          `json:"discount" binding:"omitempty,gt=0"`
	CategoryID     *uint             `json:"category_id"`
	UsesLeft       *int              `json:"uses_left" binding:"omitempty,min=0"`
	ExpirationDate *time.Time        `json:"expiration_date"`
}

type ValidateCouponRequest struct {
	Code       string `json:"code" binding:"required"`
	CategoryID uint   `json:"category_id" binding:"required"`
}

// CreateCoupon creates a coupon. A coupon issued to a user notifies them.
// POST /api/v1/coupons
func (ctrl *CouponController) CreateCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	coupon, err := ctrl.couponService.CreateCoupon(service.CreateCouponRequest{
		Code:           req.Code,
		Type:           req.Type,
		Discount:       req.Discount,
		CategoryID:     req.CategoryID,
		UsesLeft:       req.UsesLeft,
		ExpirationDate: req.ExpirationDate,
		UserID:         req.UserID,
	})
	if err != nil {
		ctrl.respondCouponError(c, err, "create coupon")
		return
	}

	if coupon.UserID != nil {
		notify(ctrl.notifier, *coupon.UserID, fmt.Sprintf("A new coupon %q has been created for you.", coupon.Code))
	}

	log.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"coupon":  coupon,
	})
}

// ListCoupons returns coupons newest first
// GET /api/v1/coupons?page=&limit=
func (ctrl *CouponController) ListCoupons(c *gin.Context) {
	result, err := ctrl.couponService.ListCoupons(paginationFromQuery(c))
	if err != nil {
		respondInternal(c, err, "fetch coupons")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCoupon
// GET /api/v1/coupons/:id
func (ctrl *CouponController) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	coupon, err := ctrl.couponService.GetCoupon(id)
	if err != nil {
		ctrl.respondCouponError(c, err, "fetch coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupon": coupon,
	})
}

// UpdateCoupon applies a partial update
// PUT /api/v1/coupons/:id
func (ctrl *CouponController) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	coupon, err := ctrl.couponService.UpdateCoupon(id, service.UpdateCouponRequest{
		Code:           req.Code,
		Type:           req.Type,
		Discount:       req.Discount,
		CategoryID:     req.CategoryID,
		UsesLeft:       req.UsesLeft,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		ctrl.respondCouponError(c, err, "update coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated successfully",
		"coupon":  coupon,
	})
}

// DeleteCoupon soft-deletes a coupon
// DELETE /api/v1/coupons/:id
func (ctrl *CouponController) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.couponService.DeleteCoupon(id); err != nil {
		ctrl.respondCouponError(c, err, "delete coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deleted successfully",
	})
}

// ValidateCoupon tells a shopper whether a code applies to a category
// POST /api/v1/coupons/validate
func (ctrl *CouponController) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	coupon, err := ctrl.couponService.ValidateCoupon(req.Code, req.CategoryID)
	if err != nil {
		ctrl.respondCouponError(c, err, "validate coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon is valid",
		"coupon":  coupon,
	})
}

func (ctrl *CouponController) respondCouponError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		apperrors.NotFound(c, apperrors.CouponNotFound, "Coupon not found")
	case errors.Is(err, service.ErrCouponCodeExists):
		apperrors.Conflict(c, apperrors.CouponCodeExists, "Coupon code already exists")
	case errors.Is(err, service.ErrInvalidCouponCode):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid coupon code")
	case errors.Is(err, service.ErrInvalidCouponType):
		apperrors.BadRequest(c, apperrors.CouponInvalidType, "Invalid discount type, must be either 'fixed' or 'percentage'")
	case errors.Is(err, service.ErrInvalidCouponAmount):
		apperrors.BadRequest(c, apperrors.CouponInvalidAmount, "Invalid discount value")
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
	case errors.Is(err, service.ErrCouponExhausted):
		apperrors.BadRequest(c, apperrors.CouponExhausted, "Coupon has no remaining uses")
	case errors.Is(err, service.ErrCouponExpired):
		apperrors.BadRequest(c, apperrors.CouponExpired, "Coupon has expired")
	case errors.Is(err, service.ErrCouponNotApplicable):
		apperrors.BadRequest(c, apperrors.CouponNotApplicable, "Coupon not applicable to this category")
	default:
		respondInternal(c, err, context)
	}
}
