package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// Notifier delivers a message to a user's inbox. Delivery is best effort.
type Notifier interface {
	Notify(userID uint, message string)
}

func notify(n Notifier, userID uint, message string) {
	if n == nil || userID == 0 {
		return
	}
	n.Notify(userID, message)
}

// parseIDParam reads a positive numeric path parameter, answering 400 when malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func paginationFromQuery(c *gin.Context) service.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))
	return service.NewPagination(page, limit)
}

// requireUser returns the authenticated user id or answers 401.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Login required")
		return 0, false
	}
	return userID, true
}

// scopeUserID is the owner filter passed to services: admins act on any user's data.
func scopeUserID(c *gin.Context, userID uint) uint {
	if middleware.IsAdmin(c) {
		return 0
	}
	return userID
}

func respondValidation(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
}

func respondInternal(c *gin.Context, err error, context string) {
	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}
