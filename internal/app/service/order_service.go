package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotOwned         = errors.New("order belongs to another user")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")

	ErrInvalidCart       = errors.New("invalid cart")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the product that cannot cover the requested quantity.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID    uint
	ProductTitle string
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id %d): requested %d, available %d",
		e.ProductTitle, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// CheckoutFailure classifies why a checkout did not complete.
type CheckoutFailure string

const (
	FailureInvalidCart       CheckoutFailure = "invalid_cart"
	FailureEmptyCart         CheckoutFailure = "empty_cart"
	FailureInsufficientStock CheckoutFailure = "insufficient_stock"
	FailureInternal          CheckoutFailure = "internal"
)

// ClassifyCheckoutError maps a Checkout error onto a CheckoutFailure.
// It returns "" for a nil error.
func ClassifyCheckoutError(err error) CheckoutFailure {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCart):
		return FailureInvalidCart
	case errors.Is(err, ErrEmptyCart):
		return FailureEmptyCart
	case errors.Is(err, ErrInsufficientStock):
		return FailureInsufficientStock
	default:
		return FailureInternal
	}
}

type CheckoutRequest struct {
	UserID      uint // zero skips the ownership check
	CartID      uint
	CouponCodes []string
}

type OrderService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	ListOrders(p Pagination, status *model.OrderStatus) (PageResult[model.Order], error)
	GetOrderByID(orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	CancelOrder(userID, orderID uint) (*model.Order, error)
	DeleteOrder(orderID uint) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	cache       CacheInvalidator
	db          *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	db *gorm.DB,
	cache CacheInvalidator,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cache:       cache,
		db:          db,
	}
}

// Checkout turns an open cart into an order in one transaction: stock is verified,
// coupons priced and consumed, stock decremented, the order recorded, the cart
// relabeled and a fresh cart opened for the user. Any error rolls everything back.
func (s *orderService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":      req.UserID,
		"cart_id":      req.CartID,
		"coupon_codes": req.CouponCodes,
	})

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.checkoutTx(tx, req)
		return err
	})

	outcome := ClassifyCheckoutError(err)
	if err != nil {
		metrics.CheckoutOutcomes.WithLabelValues(string(outcome)).Inc()
		if outcome == FailureInternal {
			logger.Error("Checkout failed", err, map[string]interface{}{
				"user_id": req.UserID,
				"cart_id": req.CartID,
			})
		} else {
			logger.Warn("Checkout rejected", map[string]interface{}{
				"user_id": req.UserID,
				"cart_id": req.CartID,
				"reason":  outcome,
				"error":   err.Error(),
			})
		}
		return nil, err
	}
	metrics.CheckoutOutcomes.WithLabelValues("success").Inc()

	logger.Info("Checkout completed", map[string]interface{}{
		"order_id":         order.ID,
		"user_id":          order.UserID,
		"total_price":      order.TotalPrice,
		"discount_applied": order.DiscountApplied,
		"coupon_code":      order.CouponCode,
	})

	invalidate(ctx, s.cache, CacheGroupProducts)

	// The order is committed; a failed re-read must not turn it into an error.
	placed, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		logger.Error("Failed to reload order after checkout", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return order, nil
	}
	return placed, nil
}

func (s *orderService) checkoutTx(tx *gorm.DB, req CheckoutRequest) (*model.Order, error) {
	carts := s.cartRepo.WithTx(tx)
	products := s.productRepo.WithTx(tx)
	coupons := s.couponRepo.WithTx(tx)
	orders := s.orderRepo.WithTx(tx)

	cart, err := carts.FindByID(req.CartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCart
		}
		return nil, err
	}
	if !cart.IsOpen() || (req.UserID != 0 && cart.UserID != req.UserID) {
		return nil, ErrInvalidCart
	}

	items, err := carts.FindItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]uint, 0, len(items))
	requested := make(map[uint]int, len(items))
	for _, item := range items {
		if _, seen := requested[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	locked, err := products.FindByIDsForUpdate(productIDs)
	if err != nil {
		return nil, err
	}

	// Verify every line before anything is written.
	for _, id := range productIDs {
		product, ok := locked[id]
		if !ok || requested[id] > product.Stock {
			return nil, &InsufficientStockError{
				ProductID:    id,
				ProductTitle: product.Title,
				Requested:    requested[id],
				Available:    product.Stock,
			}
		}
	}

	found := make([]model.Coupon, 0, len(req.CouponCodes))
	for _, code := range req.CouponCodes {
		coupon, err := coupons.FindActiveByCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		found = append(found, *coupon)
	}

	lines := make([]PricingLine, len(items))
	for i, item := range items {
		lines[i] = PricingLine{
			ItemID:     item.ID,
			ProductID:  item.ProductID,
			CategoryID: locked[item.ProductID].CategoryID,
			BasePrice:  item.BasePrice,
		}
	}
	priced := PriceCart(lines, found)

	for _, line := range priced.Lines {
		if err := carts.UpdateItemFinalPrice(line.ItemID, line.FinalPrice); err != nil {
			return nil, err
		}
	}
	for couponID, n := range priced.Matches {
		if err := coupons.ConsumeUses(couponID, n); err != nil {
			return nil, err
		}
	}

	for _, id := range productIDs {
		ok, err := products.DecrementStock(id, requested[id])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &InsufficientStockError{
				ProductID:    id,
				ProductTitle: locked[id].Title,
				Requested:    requested[id],
				Available:    locked[id].Stock,
			}
		}
	}

	order := &model.Order{
		UserID:          cart.UserID,
		CartID:          cart.ID,
		TotalPrice:      priced.Subtotal - priced.DiscountApplied,
		DiscountApplied: priced.DiscountApplied,
		CouponCode:      priced.CouponCodeString(),
		Status:          model.OrderStatusPending,
	}
	if err := orders.Create(order); err != nil {
		return nil, err
	}

	ok, err := carts.MarkCheckedOut(cart.ID, order.CouponCode, order.TotalPrice)
	if err != nil {
		return nil, err
	}
	if !ok {
		// another checkout of the same cart won the race
		return nil, ErrInvalidCart
	}

	if err := carts.Create(&model.Cart{UserID: cart.UserID, Type: model.CartTypeCart}); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListOrders(p Pagination, status *model.OrderStatus) (PageResult[model.Order], error) {
	if status != nil && !status.IsValid() {
		return PageResult[model.Order]{}, ErrInvalidOrderStatus
	}

	orders, total, err := s.orderRepo.List(repository.OrderFilter{
		Status: status,
		Limit:  p.Limit,
		Offset: p.Offset(),
	})
	if err != nil {
		return PageResult[model.Order]{}, err
	}
	return newPageResult(orders, total, p), nil
}

func (s *orderService) GetOrderByID(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		logger.Warn("Rejected invalid order status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, ErrInvalidOrderStatus
	}

	if _, err := s.GetOrderByID(orderID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return s.GetOrderByID(orderID)
}

// CancelOrder cancels the caller's own order. Stock and coupon uses are not restored.
func (s *orderService) CancelOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order cancel by non-owner", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotOwned
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, ErrOrderAlreadyCancelled
	}

	if err := s.orderRepo.UpdateStatus(orderID, model.OrderStatusCancelled); err != nil {
		return nil, err
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})
	return s.GetOrderByID(orderID)
}

func (s *orderService) DeleteOrder(orderID uint) error {
	if _, err := s.GetOrderByID(orderID); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(orderID); err != nil {
		return err
	}

	logger.Info("Order deleted", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}
