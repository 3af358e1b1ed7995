package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	categoryController     *controller.CategoryController
	productController      *controller.ProductController
	cartController         *controller.CartController
	couponController       *controller.CouponController
	orderController        *controller.OrderController
	notificationController *controller.NotificationController
	roleRequestController  *controller.RoleRequestController
	authMiddleware         *middleware.AuthMiddleware
	responseCache          *middleware.ResponseCache
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	couponController *controller.CouponController,
	orderController *controller.OrderController,
	notificationController *controller.NotificationController,
	roleRequestController *controller.RoleRequestController,
	authMiddleware *middleware.AuthMiddleware,
	responseCache *middleware.ResponseCache,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		categoryController:     categoryController,
		productController:      productController,
		cartController:         cartController,
		couponController:       couponController,
		orderController:        orderController,
		notificationController: notificationController,
		roleRequestController:  roleRequestController,
		authMiddleware:         authMiddleware,
		responseCache:          responseCache,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := r.authMiddleware.RequireRole(model.RoleAdmin)
	catalogManager := r.authMiddleware.RequireRole(model.RoleSeller, model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
			auth.PUT("/me/password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.POST("",
				r.authMiddleware.Authenticate(),
				admin,
				r.categoryController.CreateCategory,
			)
		}

		products := v1.Group("/products")
		{
			cached := r.responseCache.Middleware(service.CacheGroupProducts)
			products.GET("", cached, r.productController.ListProducts)
			products.GET("/:id", cached, r.productController.GetProduct)

			products.POST("",
				r.authMiddleware.Authenticate(),
				catalogManager,
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				catalogManager,
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				catalogManager,
				r.productController.DeleteProduct,
			)
		}

		carts := v1.Group("/carts")
		carts.Use(r.authMiddleware.Authenticate())
		{
			carts.POST("", r.cartController.CreateCart)
			carts.GET("/me", r.cartController.GetMyCart)
			carts.GET("/user/:user_id", admin, r.cartController.GetUserCart)
			carts.GET("/:id/items", r.cartController.ListItems)
			carts.POST("/:id/items", r.cartController.AddItem)
			carts.DELETE("/:id/items", r.cartController.ClearCart)
			carts.PUT("/:id/items/:item_id", r.cartController.UpdateItem)
			carts.DELETE("/:id/items/:item_id", r.cartController.RemoveItem)
		}

		coupons := v1.Group("/coupons")
		coupons.Use(r.authMiddleware.Authenticate())
		{
			coupons.POST("/validate", r.couponController.ValidateCoupon)

			coupons.POST("", admin, r.couponController.CreateCoupon)
			coupons.GET("", admin, r.couponController.ListCoupons)
			coupons.GET("/:id", admin, r.couponController.GetCoupon)
			coupons.PUT("/:id", admin, r.couponController.UpdateCoupon)
			coupons.DELETE("/:id", admin, r.couponController.DeleteCoupon)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.Checkout)
			orders.GET("/me", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/cancel", r.orderController.Cancel)

			orders.GET("", admin, r.orderController.ListOrders)
			orders.GET("/export", admin, r.orderController.Export)
			orders.PUT("/:id/status", admin, r.orderController.UpdateStatus)
			orders.DELETE("/:id", admin, r.orderController.Delete)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.GetNotifications)
			notifications.GET("/unread-count", r.notificationController.GetUnreadCount)
			notifications.GET("/ws", r.notificationController.Stream)
			notifications.PATCH("/read-all", r.notificationController.MarkAllAsRead)
			notifications.PATCH("/:id/read", r.notificationController.MarkAsRead)
		}

		roleRequests := v1.Group("/role-requests")
		roleRequests.Use(r.authMiddleware.Authenticate())
		{
			roleRequests.POST("", r.roleRequestController.CreateRequest)
			roleRequests.GET("", admin, r.roleRequestController.ListPending)
			roleRequests.POST("/:id/approve", admin, r.roleRequestController.Approve)
			roleRequests.POST("/:id/reject", admin, r.roleRequestController.Reject)
		}

		v1.PUT("/users/:id/role",
			r.authMiddleware.Authenticate(),
			admin,
			r.roleRequestController.ChangeRole,
		)
	}

	return router
}
