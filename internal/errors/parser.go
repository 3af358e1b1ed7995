package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe error code and message pair.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a storage error into a client-safe ErrorInfo.
// context names the failed operation, e.g. "create coupon".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
	}

	errStr := err.Error()
	errLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	// postgres 23505, sqlite "UNIQUE constraint failed"
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower)
	}

	// postgres 23502, sqlite "NOT NULL constraint failed"
	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Input value is not valid"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "coupons.code") || strings.Contains(errLower, "idx_coupons_code"):
		return ErrorInfo{Code: CouponCodeExists, Message: "A coupon with this code already exists"}
	case strings.Contains(errLower, "users.email") || strings.Contains(errLower, "idx_users_email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already in use"}
	case strings.Contains(errLower, "categories.name") || strings.Contains(errLower, "idx_categories_name"):
		return ErrorInfo{Code: CategoryExists, Message: "A category with this name already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The resource already exists"}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "The resource is still referenced and cannot be deleted"}
	}
	switch {
	case strings.Contains(errLower, "category_id"):
		return ErrorInfo{Code: CategoryNotFound, Message: "Category does not exist"}
	case strings.Contains(errLower, "product_id"):
		return ErrorInfo{Code: ProductNotFound, Message: "Product does not exist"}
	case strings.Contains(errLower, "user_id"):
		return ErrorInfo{Code: ResourceNotFound, Message: "User does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource was not found"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	for _, subject := range []string{"coupon", "order", "cart", "product", "category", "notification", "user"} {
		if strings.Contains(contextLower, subject) {
			return strings.ToUpper(subject[:1]) + subject[1:] + " not found"
		}
	}
	return "The requested resource was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create the resource. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the resource. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the resource. Please try again later"
	}
	return "An internal error occurred. Please try again later"
}

// ParseAndRespond writes ParseError(err, context) as the response body.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
