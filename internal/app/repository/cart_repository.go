package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository

	Create(cart *model.Cart) error
	FindByID(id uint) (*model.Cart, error)
	FindActiveByUserID(userID uint) (*model.Cart, error)
	MarkCheckedOut(cartID uint, couponCode string, price int64) (bool, error)

	CreateItem(item *model.CartItem) error
	FindItemByID(cartID, itemID uint) (*model.CartItem, error)
	FindItemByProduct(cartID, productID uint) (*model.CartItem, error)
	FindItems(cartID uint) ([]model.CartItem, error)
	FindItemsPage(cartID uint, limit, offset int) ([]model.CartItem, int64, error)
	UpdateItem(item *model.CartItem) error
	UpdateItemFinalPrice(itemID uint, finalPrice int64) error
	DeleteItem(cartID, itemID uint) (bool, error)
	ClearItems(cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": cart.UserID,
			"type":    cart.Type,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": cart.UserID,
		"type":    cart.Type,
	})
	return nil
}

func (r *cartRepository) FindByID(id uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.First(&cart, id).Error; err != nil {
		logger.Debug("Cart not found by ID", map[string]interface{}{
			"cart_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUserID returns the user's open Cart-typed cart with its items.
func (r *cartRepository) FindActiveByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ? AND type = ?", userID, model.CartTypeCart).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id ASC")
		}).
		Preload("Items.Product").
		Order("id DESC").
		First(&cart).Error
	if err != nil {
		logger.Debug("Active cart not found for user", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &cart, nil
}

// MarkCheckedOut relabels an open cart as an order and stamps the applied
// coupons and price. It returns false if the cart was no longer open.
func (r *cartRepository) MarkCheckedOut(cartID uint, couponCode string, price int64) (bool, error) {
	result := r.db.Model(&model.Cart{}).
		Where("id = ? AND type = ?", cartID, model.CartTypeCart).
		Updates(map[string]interface{}{
			"type":   model.CartTypeOrder,
			"coupon": couponCode,
			"price":  price,
		})
	if result.Error != nil {
		logger.Error("Failed to mark cart as checked out", result.Error, map[string]interface{}{
			"cart_id": cartID,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Omit("Product", "Cart").Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindItemByID(cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).
		Preload("Product").
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByProduct(cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItems returns every item of the cart with its product, in insertion order.
func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.Where("cart_id = ?", cartID).
		Preload("Product").
		Order("id ASC").
		Find(&items).Error; err != nil {
		logger.Error("Failed to find cart items", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) FindItemsPage(cartID uint, limit, offset int) ([]model.CartItem, int64, error) {
	query := r.db.Model(&model.CartItem{}).Where("cart_id = ?", cartID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.CartItem
	if err := query.Preload("Product").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		logger.Error("Failed to page cart items", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, 0, err
	}
	return items, total, nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	if err := r.db.Omit("Product", "Cart").Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}

	logger.Debug("Cart item updated in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
		"base_price":   item.BasePrice,
	})
	return nil
}

func (r *cartRepository) UpdateItemFinalPrice(itemID uint, finalPrice int64) error {
	if err := r.db.Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("final_price", finalPrice).Error; err != nil {
		logger.Error("Failed to store cart item final price", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(cartID, itemID uint) (bool, error) {
	result := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item", result.Error, map[string]interface{}{
			"cart_id":      cartID,
			"cart_item_id": itemID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *cartRepository) ClearItems(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart items", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}

	logger.Debug("Cart items cleared", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}
