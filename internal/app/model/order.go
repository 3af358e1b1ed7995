package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusValidated OrderStatus = "Validated"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusValidated, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the durable record of one checkout. Only Status and DeletedAt change after creation.
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UUID            string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	CartID          uint           `gorm:"not null;index" json:"cart_id"`
	TotalPrice      int64          `gorm:"not null" json:"total_price"` // after discounts
	DiscountApplied int64          `gorm:"not null;default:0" json:"discount_applied"`
	CouponCode      string         `gorm:"type:text" json:"coupon_code"`
	Status          OrderStatus    `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Cart *Cart `gorm:"foreignKey:CartID" json:"cart,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureUUID(&o.UUID)
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}
