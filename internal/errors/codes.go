package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthWrongPassword      = "AUTH_WRONG_PASSWORD" // current password did not match
	AuthSamePassword       = "AUTH_SAME_PASSWORD"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Role requests (ROLE_) ====================
	RoleRequestNotFound = "ROLE_REQUEST_NOT_FOUND"
	RoleRequestPending  = "ROLE_REQUEST_PENDING" // user already has an open request
	RoleRequestHandled  = "ROLE_REQUEST_HANDLED"
	RoleInvalid         = "ROLE_INVALID"
	RoleAlreadyHeld     = "ROLE_ALREADY_HELD"
	RoleChangeForbidden = "ROLE_CHANGE_FORBIDDEN" // admins cannot be demoted here

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_ / CATEGORY_) ====================
	ProductNotFound  = "PRODUCT_NOT_FOUND"
	CategoryNotFound = "CATEGORY_NOT_FOUND"
	CategoryExists   = "CATEGORY_EXISTS"

	// ==================== Cart (CART_) ====================
	CartNotFound      = "CART_NOT_FOUND"
	CartAlreadyExists = "CART_ALREADY_EXISTS" // user already has an active cart
	CartItemNotFound  = "CART_ITEM_NOT_FOUND"
	CartNotEditable   = "CART_NOT_EDITABLE" // cart was already checked out
	CartEmpty         = "CART_EMPTY"

	// ==================== Checkout (CHECKOUT_ / STOCK_) ====================
	CheckoutInvalidCart = "CHECKOUT_INVALID_CART"
	StockInsufficient   = "STOCK_INSUFFICIENT"

	// ==================== Coupon (COUPON_) ====================
	CouponNotFound      = "COUPON_NOT_FOUND"
	CouponCodeExists    = "COUPON_CODE_EXISTS"
	CouponInvalidType   = "COUPON_INVALID_TYPE"
	CouponInvalidAmount = "COUPON_INVALID_DISCOUNT"
	CouponExhausted     = "COUPON_EXHAUSTED"
	CouponExpired       = "COUPON_EXPIRED"
	CouponNotApplicable = "COUPON_NOT_APPLICABLE" // wrong category

	// ==================== Order (ORDER_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"
	OrderInvalidStatus    = "ORDER_INVALID_STATUS"
	OrderAlreadyCancelled = "ORDER_ALREADY_CANCELLED"
	OrderExportFailed     = "ORDER_EXPORT_FAILED"

	// ==================== Notification (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
