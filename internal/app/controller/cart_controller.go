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

type CartController struct {
	cartService service.CartService
	notifier    Notifier
}

func NewCartController(cartService service.CartService, notifier Notifier) *CartController {
	return &CartController{
		cartService: cartService,
		notifier:    notifier,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CreateCart opens a cart for the caller
// POST /api/v1/carts
func (ctrl *CartController) CreateCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.CreateCart(userID)
	if err != nil {
		ctrl.respondCartError(c, err, "create cart")
		return
	}

	notify(ctrl.notifier, userID, "A new cart has been created for your account.")

	log.Info("Cart created", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Cart created successfully",
		"cart":    cart,
	})
}

// GetMyCart returns the caller's open cart
// GET /api/v1/carts/me
func (ctrl *CartController) GetMyCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetActiveCart(userID)
	if err != nil {
		ctrl.respondCartError(c, err, "fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// GetUserCart returns any user's open cart
// GET /api/v1/carts/user/:user_id
func (ctrl *CartController) GetUserCart(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetActiveCart(userID)
	if err != nil {
		ctrl.respondCartError(c, err, "fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// ListItems returns a page of a cart's lines
// GET /api/v1/carts/:id/items?page=&limit=
func (ctrl *CartController) ListItems(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := ctrl.cartService.ListItems(scopeUserID(c, userID), cartID, paginationFromQuery(c))
	if err != nil {
		ctrl.respondCartError(c, err, "fetch cart items")
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddItem adds a product to a cart, replacing the quantity of an existing line
// POST /api/v1/carts/:id/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	item, err := ctrl.cartService.AddItem(scopeUserID(c, userID), cartID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, "add cart item")
		return
	}

	notify(ctrl.notifier, userID, fmt.Sprintf("The product %q has been added to your cart.", item.Product.Title))

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cartID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"item":    item,
	})
}

// UpdateItem changes a line's quantity
// PUT /api/v1/carts/:id/items/:item_id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	item, err := ctrl.cartService.UpdateItemQuantity(scopeUserID(c, userID), cartID, itemID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, "update cart item")
		return
	}

	notify(ctrl.notifier, userID, fmt.Sprintf("The quantity of the product %q in your cart has been updated.", item.Product.Title))

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"item":    item,
	})
}

// RemoveItem deletes a line from a cart
// DELETE /api/v1/carts/:id/items/:item_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(scopeUserID(c, userID), cartID, itemID); err != nil {
		ctrl.respondCartError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}

// ClearCart removes every line from a cart
// DELETE /api/v1/carts/:id/items
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(scopeUserID(c, userID), cartID); err != nil {
		ctrl.respondCartError(c, err, "clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrCartNotFound):
		apperrors.NotFound(c, apperrors.CartNotFound, "Cart not found")
	case errors.Is(err, service.ErrCartAlreadyExists):
		apperrors.Conflict(c, apperrors.CartAlreadyExists, "You already have an active cart")
	case errors.Is(err, service.ErrCartNotEditable):
		apperrors.BadRequest(c, apperrors.CartNotEditable, "Invalid cart type")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.CartItemNotFound, "Item not found in cart")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity must be at least 1")
	default:
		respondInternal(c, err, context)
	}
}
