package model

import (
	"time"

	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

func (t CouponType) IsValid() bool {
	return t == CouponTypePercentage || t == CouponTypeFixed
}

// Coupon discounts cart lines whose product belongs to CategoryID.
type Coupon struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Code           string         `gorm:"type:varchar(32);not null;index" json:"code"`
	Type           CouponType     `gorm:"type:varchar(20);not null" json:"type"`
	Discount       float64        `gorm:"not null" json:"discount"`
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`
	UsesLeft       int            `gorm:"not null;default:0" json:"uses_left"`
	ExpirationDate time.Time      `gorm:"not null;index" json:"expiration_date"`
	UserID         *uint          `gorm:"index" json:"user_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Coupon) TableName() string {
	return "coupons"
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	ensureUUID(&c.UUID)
	return nil
}

// BeforeSave stores codes upper-cased and trimmed.
func (c *Coupon) BeforeSave(tx *gorm.DB) error {
	c.Code = util.NormalizeCouponCode(c.Code)
	return nil
}

// IsExpired reports whether the coupon expired before now.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}
