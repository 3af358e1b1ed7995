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

type OrderController struct {
	orderService  service.OrderService
	exportService service.OrderExportService
	notifier      Notifier
}

func NewOrderController(
	orderService service.OrderService,
	exportService service.OrderExportService,
	notifier Notifier,
) *OrderController {
	return &OrderController{
		orderService:  orderService,
		exportService: exportService,
		notifier:      notifier,
	}
}

type CheckoutRequest struct {
	CartID      uint     `json:"cart_id" binding:"required"`
	CouponCodes []string `json:"coupon_codes"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// Checkout converts the caller's cart into an order
// POST /api/v1/orders
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), service.CheckoutRequest{
		UserID:      userID,
		CartID:      req.CartID,
		CouponCodes: req.CouponCodes,
	})
	if err != nil {
		fields := map[string]interface{}{
			"user_id": userID,
			"cart_id": req.CartID,
		}
		switch service.ClassifyCheckoutError(err) {
		case service.FailureInvalidCart:
			log.Warn("Checkout rejected: invalid cart", fields)
			apperrors.BadRequest(c, apperrors.CheckoutInvalidCart, "Invalid cart or cart type")
		case service.FailureEmptyCart:
			log.Warn("Checkout rejected: empty cart", fields)
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case service.FailureInsufficientStock:
			log.Warn("Checkout rejected: insufficient stock", fields)
			message := "Insufficient stock"
			var stockErr *service.InsufficientStockError
			if errors.As(err, &stockErr) {
				message = fmt.Sprintf("Insufficient stock for product: %s", stockErr.ProductTitle)
			}
			apperrors.Conflict(c, apperrors.StockInsufficient, message)
		default:
			respondInternal(c, err, "create order")
		}
		return
	}

	notify(ctrl.notifier, userID, "Your order has been created successfully.")

	log.Info("Order created", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": order.TotalPrice,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetMyOrders returns the caller's orders
// GET /api/v1/orders/me
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondInternal(c, err, "fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// ListOrders returns every order, optionally filtered by status
// GET /api/v1/orders?page=&limit=&status=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		if !s.IsValid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid status value")
			return
		}
		status = &s
	}

	result, err := ctrl.orderService.ListOrders(paginationFromQuery(c), status)
	if err != nil {
		respondInternal(c, err, "fetch orders")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder returns one order. Non-admins only see their own.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(orderID)
	if err != nil {
		ctrl.respondOrderError(c, err, "fetch order")
		return
	}
	if scope := scopeUserID(c, userID); scope != 0 && order.UserID != scope {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateStatus changes an order's status and tells its owner
// PUT /api/v1/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		ctrl.respondOrderError(c, err, "update order")
		return
	}

	notify(ctrl.notifier, order.UserID, fmt.Sprintf("The status of your order has been updated to: %s.", order.Status))

	log.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// Cancel cancels one of the caller's orders
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) Cancel(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, orderID)
	if err != nil {
		ctrl.respondOrderError(c, err, "cancel order")
		return
	}

	notify(ctrl.notifier, userID, "Your order has been cancelled successfully.")

	log.Info("Order cancelled", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// Delete soft-deletes an order
// DELETE /api/v1/orders/:id
func (ctrl *OrderController) Delete(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.DeleteOrder(orderID); err != nil {
		ctrl.respondOrderError(c, err, "delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
	})
}

// Export renders orders to a spreadsheet. The file is streamed unless it was uploaded.
// GET /api/v1/orders/export?status=&from=&to= (dates as YYYY-MM-DD)
func (ctrl *OrderController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var filter service.OrderExportFilter
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		if !s.IsValid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid status value")
			return
		}
		filter.Status = &s
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Dates must use the YYYY-MM-DD format")
			return
		}
		*p.dst = &t
	}
	if filter.To != nil {
		end := filter.To.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	export, err := ctrl.exportService.ExportOrders(c.Request.Context(), filter)
	if err != nil {
		log.Error("Order export failed", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.OrderExportFailed, "Failed to export orders")
		return
	}

	log.Info("Orders exported", map[string]interface{}{
		"rows":     export.Rows,
		"uploaded": export.URL != "",
	})

	if export.URL != "" {
		c.JSON(http.StatusOK, gin.H{
			"file": export.FileName,
			"rows": export.Rows,
			"url":  export.URL,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, service.XLSXContentType, export.Content)
}

func (ctrl *OrderController) respondOrderError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrOrderNotOwned):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You are not allowed to cancel this order")
	case errors.Is(err, service.ErrOrderAlreadyCancelled):
		apperrors.BadRequest(c, apperrors.OrderAlreadyCancelled, "Order is already cancelled")
	case errors.Is(err, service.ErrInvalidOrderStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid status value")
	default:
		respondInternal(c, err, context)
	}
}
