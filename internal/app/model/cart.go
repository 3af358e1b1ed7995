package model

import (
	"time"

	"gorm.io/gorm"
)

type CartType string

const (
	CartTypeCart  CartType = "Cart"  // open for shopping
	CartTypeOrder CartType = "Order" // checked out, read-only
)

// Cart is a user's basket. A checked-out cart is relabeled to CartTypeOrder, never removed.
type Cart struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UUID      string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Type      CartType       `gorm:"type:varchar(10);not null;default:'Cart';index" json:"type"`
	Coupon    string         `gorm:"type:text" json:"coupon"` // comma-joined applied codes
	Price     int64          `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User  *User      `gorm:"foreignKey:UserID" json:"-"`
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	ensureUUID(&c.UUID)
	if c.Type == "" {
		c.Type = CartTypeCart
	}
	return nil
}

// IsOpen reports whether items may still be added or checked out.
func (c *Cart) IsOpen() bool {
	return c.Type == CartTypeCart
}

// CartItem is one product line. BasePrice is product price times quantity at the time the
// line was last set; FinalPrice is written by checkout.
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CartID     uint      `gorm:"not null;index" json:"cart_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	BasePrice  int64     `gorm:"not null" json:"base_price"`
	FinalPrice int64     `gorm:"not null;default:0" json:"final_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Cart    *Cart   `gorm:"foreignKey:CartID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
