package repository

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	Create(coupon *model.Coupon) error
	FindByID(id uint) (*model.Coupon, error)
	FindActiveByCode(code string) (*model.Coupon, error)
	List(limit, offset int) ([]model.Coupon, int64, error)
	Update(coupon *model.Coupon) error
	Delete(id uint) error
	ConsumeUses(id uint, n int) error
	ExpireBefore(ctx context.Context, t time.Time) (int64, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepository{db: tx}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	logger.Debug("Creating coupon in database", map[string]interface{}{
		"code":        coupon.Code,
		"type":        coupon.Type,
		"category_id": coupon.CategoryID,
	})

	if err := r.db.Omit("Category").Create(coupon).Error; err != nil {
		logger.Error("Failed to create coupon in database", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}

	logger.Debug("Coupon created in database", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	return nil
}

func (r *couponRepository) FindByID(id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.Preload("Category").First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindActiveByCode looks up a non-deleted coupon by its normalized code.
// Expiry and remaining uses are not checked.
func (r *couponRepository) FindActiveByCode(code string) (*model.Coupon, error) {
	normalized := util.NormalizeCouponCode(code)

	var coupon model.Coupon
	if err := r.db.Where("code = ?", normalized).
		Order("id DESC").
		First(&coupon).Error; err != nil {
		logger.Debug("Coupon not found by code", map[string]interface{}{
			"code":  normalized,
			"error": err.Error(),
		})
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) List(limit, offset int) ([]model.Coupon, int64, error) {
	var total int64
	if err := r.db.Model(&model.Coupon{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count coupons", err)
		return nil, 0, err
	}

	var coupons []model.Coupon
	if err := r.db.Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&coupons).Error; err != nil {
		logger.Error("Failed to list coupons", err)
		return nil, 0, err
	}
	return coupons, total, nil
}

func (r *couponRepository) Update(coupon *model.Coupon) error {
	if err := r.db.Omit("Category").Save(coupon).Error; err != nil {
		logger.Error("Failed to update coupon in database", err, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return err
	}

	logger.Debug("Coupon updated in database", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
		"uses_left": coupon.UsesLeft,
	})
	return nil
}

// Delete soft-deletes the coupon.
func (r *couponRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Coupon{}, id).Error; err != nil {
		logger.Error("Failed to delete coupon", err, map[string]interface{}{
			"coupon_id": id,
		})
		return err
	}
	return nil
}

// ConsumeUses lowers uses_left by n in a single statement, flooring at zero.
func (r *couponRepository) ConsumeUses(id uint, n int) error {
	if n <= 0 {
		return nil
	}

	if err := r.db.Model(&model.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("uses_left", gorm.Expr("CASE WHEN uses_left >= ? THEN uses_left - ? ELSE 0 END", n, n)).Error; err != nil {
		logger.Error("Failed to consume coupon uses", err, map[string]interface{}{
			"coupon_id": id,
			"uses":      n,
		})
		return err
	}

	logger.Debug("Coupon uses consumed", map[string]interface{}{
		"coupon_id": id,
		"uses":      n,
	})
	return nil
}

// ExpireBefore soft-deletes every coupon whose expiration date is before t.
func (r *couponRepository) ExpireBefore(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expiration_date < ?", t).Delete(&model.Coupon{})
	if result.Error != nil {
		logger.Error("Failed to expire coupons", result.Error, map[string]interface{}{
			"before": t,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
