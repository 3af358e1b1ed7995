package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type RoleRequestController struct {
	roleService service.RoleRequestService
	notifier    Notifier
}

func NewRoleRequestController(roleService service.RoleRequestService, notifier Notifier) *RoleRequestController {
	return &RoleRequestController{
		roleService: roleService,
		notifier:    notifier,
	}
}

type RoleChangeRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

// respondRoleError maps role request service errors onto responses.
func respondRoleError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
	case errors.Is(err, service.ErrRoleRequestNotFound):
		apperrors.NotFound(c, apperrors.RoleRequestNotFound, "Role request not found")
	case errors.Is(err, service.ErrInvalidRole):
		apperrors.BadRequest(c, apperrors.RoleInvalid, "Role must be user or seller")
	case errors.Is(err, service.ErrRoleAlreadyHeld):
		apperrors.BadRequest(c, apperrors.RoleAlreadyHeld, "User already has this role")
	case errors.Is(err, service.ErrRoleChangeForbidden):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.RoleChangeForbidden, "Admin roles cannot be changed")
	case errors.Is(err, service.ErrRoleRequestPending):
		apperrors.Conflict(c, apperrors.RoleRequestPending, "You already have a pending request")
	case errors.Is(err, service.ErrRoleRequestHandled):
		apperrors.Conflict(c, apperrors.RoleRequestHandled, "Role request was already handled")
	default:
		respondInternal(c, err, context)
	}
}

// CreateRequest asks for a role change on behalf of the current user
// POST /api/v1/role-requests
func (ctrl *RoleRequestController) CreateRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	request, err := ctrl.roleService.RequestRole(userID, req.Role)
	if err != nil {
		respondRoleError(c, err, "create role request")
		return
	}

	adminIDs, err := ctrl.roleService.AdminIDs()
	if err != nil {
		log.Error("Failed to list admins for role request", err, map[string]interface{}{
			"request_id": request.ID,
		})
	}
	message := fmt.Sprintf("User %q has requested a role change to %q.", request.User.Name, request.RequestedRole)
	for _, adminID := range adminIDs {
		notify(ctrl.notifier, adminID, message)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your request has been submitted",
		"request": request,
	})
}

// ListPending returns the open role requests
// GET /api/v1/role-requests
func (ctrl *RoleRequestController) ListPending(c *gin.Context) {
	requests, err := ctrl.roleService.ListPending()
	if err != nil {
		respondInternal(c, err, "list role requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// Approve grants the requested role
// POST /api/v1/role-requests/:id/approve
func (ctrl *RoleRequestController) Approve(c *gin.Context) {
	ctrl.resolve(c, true)
}

// Reject closes the request without changing the role
// POST /api/v1/role-requests/:id/reject
func (ctrl *RoleRequestController) Reject(c *gin.Context) {
	ctrl.resolve(c, false)
}

func (ctrl *RoleRequestController) resolve(c *gin.Context, approve bool) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var (
		request *model.RoleRequest
		err     error
		verdict = "approved"
	)
	if approve {
		request, err = ctrl.roleService.Approve(requestID, adminID)
	} else {
		verdict = "rejected"
		request, err = ctrl.roleService.Reject(requestID, adminID)
	}
	if err != nil {
		respondRoleError(c, err, "resolve role request")
		return
	}

	notify(ctrl.notifier, request.UserID,
		fmt.Sprintf("Your role change request to %q has been %s.", request.RequestedRole, verdict))

	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// ChangeRole sets a user's role directly
// PUT /api/v1/users/:id/role
func (ctrl *RoleRequestController) ChangeRole(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := ctrl.roleService.ChangeRole(userID, req.Role, adminID)
	if err != nil {
		respondRoleError(c, err, "change user role")
		return
	}

	notify(ctrl.notifier, user.ID, fmt.Sprintf("Your role has been changed to %q.", user.Role))

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
