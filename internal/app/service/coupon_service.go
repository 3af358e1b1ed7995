package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponCodeExists    = errors.New("coupon code already exists")
	ErrInvalidCouponCode   = errors.New("invalid coupon code")
	ErrInvalidCouponType   = errors.New("invalid discount type, must be either 'fixed' or 'percentage'")
	ErrInvalidCouponAmount = errors.New("invalid discount value")
	ErrCouponExhausted     = errors.New("coupon has no remaining uses")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponNotApplicable = errors.New("coupon not applicable to this category")
)

type CreateCouponRequest struct {
	Code           string
	Type           model.CouponType
	Discount       float64
	CategoryID     uint
	UsesLeft       int
	ExpirationDate time.Time
	UserID         *uint
}

// UpdateCouponRequest changes only the non-nil fields.
type UpdateCouponRequest struct {
	Code           *string
	Type           *model.CouponType
	Discount       *float64
	CategoryID     *uint
	UsesLeft       *int
	ExpirationDate *time.Time
}

type CouponService interface {
	CreateCoupon(req CreateCouponRequest) (*model.Coupon, error)
	ListCoupons(p Pagination) (PageResult[model.Coupon], error)
	GetCoupon(id uint) (*model.Coupon, error)
	UpdateCoupon(id uint, req UpdateCouponRequest) (*model.Coupon, error)
	DeleteCoupon(id uint) error
	ValidateCoupon(code string, categoryID uint) (*model.Coupon, error)
	ExpireCoupons(ctx context.Context) (int64, error)
}

type couponService struct {
	couponRepo   repository.CouponRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository, categoryRepo repository.CategoryRepository) CouponService {
	return &couponService{
		couponRepo:   couponRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

func validateDiscount(t model.CouponType, discount float64) error {
	if !t.IsValid() {
		return ErrInvalidCouponType
	}
	if discount <= 0 {
		return ErrInvalidCouponAmount
	}
	if t == model.CouponTypePercentage && discount > 100 {
		return ErrInvalidCouponAmount
	}
	return nil
}

func (s *couponService) ensureCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// ensureCodeFree fails when another active coupon already uses code.
func (s *couponService) ensureCodeFree(code string, exceptID uint) error {
	existing, err := s.couponRepo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != exceptID {
		return ErrCouponCodeExists
	}
	return nil
}

func (s *couponService) CreateCoupon(req CreateCouponRequest) (*model.Coupon, error) {
	if !util.IsValidCouponCode(req.Code) {
		return nil, ErrInvalidCouponCode
	}
	if err := validateDiscount(req.Type, req.Discount); err != nil {
		return nil, err
	}
	if req.UsesLeft < 0 {
		return nil, ErrInvalidCouponAmount
	}
	if err := s.ensureCategory(req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(req.Code, 0); err != nil {
		return nil, err
	}

	coupon := &model.Coupon{
		Code:           req.Code,
		Type:           req.Type,
		Discount:       req.Discount,
		CategoryID:     req.CategoryID,
		UsesLeft:       req.UsesLeft,
		ExpirationDate: req.ExpirationDate,
		UserID:         req.UserID,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}

	logger.Info("Coupon created", map[string]interface{}{
		"coupon_id":   coupon.ID,
		"code":        coupon.Code,
		"type":        coupon.Type,
		"category_id": coupon.CategoryID,
	})
	return coupon, nil
}

func (s *couponService) ListCoupons(p Pagination) (PageResult[model.Coupon], error) {
	coupons, total, err := s.couponRepo.List(p.Limit, p.Offset())
	if err != nil {
		return PageResult[model.Coupon]{}, err
	}
	return newPageResult(coupons, total, p), nil
}

func (s *couponService) GetCoupon(id uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) UpdateCoupon(id uint, req UpdateCouponRequest) (*model.Coupon, error) {
	coupon, err := s.GetCoupon(id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		if !util.IsValidCouponCode(*req.Code) {
			return nil, ErrInvalidCouponCode
		}
		if err := s.ensureCodeFree(*req.Code, coupon.ID); err != nil {
			return nil, err
		}
		coupon.Code = *req.Code
	}
	if req.Type != nil {
		coupon.Type = *req.Type
	}
	if req.Discount != nil {
		coupon.Discount = *req.Discount
	}
	if err := validateDiscount(coupon.Type, coupon.Discount); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		coupon.CategoryID = *req.CategoryID
		coupon.Category = nil
	}
	if req.UsesLeft != nil {
		if *req.UsesLeft < 0 {
			return nil, ErrInvalidCouponAmount
		}
		coupon.UsesLeft = *req.UsesLeft
	}
	if req.ExpirationDate != nil {
		coupon.ExpirationDate = *req.ExpirationDate
	}

	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}

	logger.Info("Coupon updated", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	return s.GetCoupon(coupon.ID)
}

func (s *couponService) DeleteCoupon(id uint) error {
	if _, err := s.GetCoupon(id); err != nil {
		return err
	}
	if err := s.couponRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Coupon deleted", map[string]interface{}{
		"coupon_id": id,
	})
	return nil
}

// ValidateCoupon checks that a code is usable for a category. Checkout does not
// call it; it backs the user-facing coupon check.
func (s *couponService) ValidateCoupon(code string, categoryID uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	switch {
	case coupon.UsesLeft <= 0:
		return nil, ErrCouponExhausted
	case coupon.IsExpired(s.now()):
		return nil, ErrCouponExpired
	case coupon.CategoryID != categoryID:
		return nil, ErrCouponNotApplicable
	}
	return coupon, nil
}

// ExpireCoupons soft-deletes coupons past their expiration date.
func (s *couponService) ExpireCoupons(ctx context.Context) (int64, error) {
	n, err := s.couponRepo.ExpireBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.CouponsExpired.Add(float64(n))
		logger.Info("Expired coupons removed", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}
