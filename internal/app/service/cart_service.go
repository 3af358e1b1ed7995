package service

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartAlreadyExists = errors.New("user already has an active cart")
	ErrCartNotEditable   = errors.New("cart has already been checked out")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// CartService manages shopping carts. A zero userID acts with admin rights and
// skips the ownership check.
type CartService interface {
	CreateCart(userID uint) (*model.Cart, error)
	GetActiveCart(userID uint) (*model.Cart, error)
	ListItems(userID, cartID uint, p Pagination) (PageResult[model.CartItem], error)
	AddItem(userID, cartID, productID uint, quantity int) (*model.CartItem, error)
	UpdateItemQuantity(userID, cartID, itemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(userID, cartID, itemID uint) error
	ClearCart(userID, cartID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) CreateCart(userID uint) (*model.Cart, error) {
	existing, err := s.cartRepo.FindActiveByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Cart creation rejected: active cart exists", map[string]interface{}{
			"user_id": userID,
			"cart_id": existing.ID,
		})
		return nil, ErrCartAlreadyExists
	}

	cart := &model.Cart{UserID: userID, Type: model.CartTypeCart}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}

	logger.Info("Cart created", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	return cart, nil
}

func (s *cartService) GetActiveCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

// loadCart returns the cart when userID may access it.
func (s *cartService) loadCart(userID, cartID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByID(cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if userID != 0 && cart.UserID != userID {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *cartService) loadOpenCart(userID, cartID uint) (*model.Cart, error) {
	cart, err := s.loadCart(userID, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, ErrCartNotEditable
	}
	return cart, nil
}

func (s *cartService) ListItems(userID, cartID uint, p Pagination) (PageResult[model.CartItem], error) {
	if _, err := s.loadCart(userID, cartID); err != nil {
		return PageResult[model.CartItem]{}, err
	}

	items, total, err := s.cartRepo.FindItemsPage(cartID, p.Limit, p.Offset())
	if err != nil {
		return PageResult[model.CartItem]{}, err
	}
	return newPageResult(items, total, p), nil
}

// AddItem puts a product in the cart. Adding a product already in the cart
// replaces its quantity.
func (s *cartService) AddItem(userID, cartID, productID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.loadOpenCart(userID, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	item, err := s.cartRepo.FindItemByProduct(cart.ID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if item != nil {
		item.Quantity = quantity
		item.BasePrice = product.Price * int64(quantity)
		if err := s.cartRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	} else {
		item = &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			BasePrice: product.Price * int64(quantity),
		}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	}
	item.Product = *product

	logger.Info("Product added to cart", map[string]interface{}{
		"cart_id":    cart.ID,
		"product_id": productID,
		"quantity":   quantity,
		"base_price": item.BasePrice,
	})
	return item, nil
}

func (s *cartService) UpdateItemQuantity(userID, cartID, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.loadOpenCart(userID, cartID); err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItemByID(cartID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	item.Quantity = quantity
	item.BasePrice = product.Price * int64(quantity)
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	item.Product = *product
	return item, nil
}

func (s *cartService) RemoveItem(userID, cartID, itemID uint) error {
	if _, err := s.loadOpenCart(userID, cartID); err != nil {
		return err
	}

	deleted, err := s.cartRepo.DeleteItem(cartID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCartItemNotFound
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"cart_id": cartID,
		"item_id": itemID,
	})
	return nil
}

func (s *cartService) ClearCart(userID, cartID uint) error {
	if _, err := s.loadOpenCart(userID, cartID); err != nil {
		return err
	}
	if err := s.cartRepo.ClearItems(cartID); err != nil {
		return err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}
