package service

import (
	"errors"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRoleRequestNotFound = errors.New("role request not found")
	ErrRoleRequestPending  = errors.New("user already has a pending role request")
	ErrRoleRequestHandled  = errors.New("role request was already handled")
	ErrInvalidRole         = errors.New("role cannot be requested or assigned")
	ErrRoleAlreadyHeld     = errors.New("user already has this role")
	ErrRoleChangeForbidden = errors.New("admin roles cannot be changed")
)

// RoleRequestService moves users between the user and seller roles, either on
// request with admin approval or directly by an admin. Role changes reach the
// user's access token on the next refresh.
type RoleRequestService interface {
	RequestRole(userID uint, role model.UserRole) (*model.RoleRequest, error)
	ListPending() ([]model.RoleRequest, error)
	Approve(requestID, adminID uint) (*model.RoleRequest, error)
	Reject(requestID, adminID uint) (*model.RoleRequest, error)
	// ChangeRole assigns role without a request. An open request of the user is
	// rejected, since it no longer applies.
	ChangeRole(userID uint, role model.UserRole, adminID uint) (*model.User, error)
	AdminIDs() ([]uint, error)
}

type roleRequestService struct {
	requestRepo repository.RoleRequestRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
	now         func() time.Time
}

func NewRoleRequestService(
	requestRepo repository.RoleRequestRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) RoleRequestService {
	return &roleRequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		db:          db,
		now:         time.Now,
	}
}

func (s *roleRequestService) findUser(repo repository.UserRepository, userID uint) (*model.User, error) {
	user, err := repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// checkTransition validates moving user to role.
func checkTransition(user *model.User, role model.UserRole) error {
	if !model.IsAssignableRole(role) {
		return ErrInvalidRole
	}
	if user.Role == model.RoleAdmin {
		return ErrRoleChangeForbidden
	}
	if user.Role == role {
		return ErrRoleAlreadyHeld
	}
	return nil
}

func (s *roleRequestService) RequestRole(userID uint, role model.UserRole) (*model.RoleRequest, error) {
	user, err := s.findUser(s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(user, role); err != nil {
		logger.Warn("Role request rejected", map[string]interface{}{
			"user_id":        userID,
			"requested_role": role,
			"reason":         err.Error(),
		})
		return nil, err
	}

	_, err = s.requestRepo.FindPendingByUserID(userID)
	switch {
	case err == nil:
		return nil, ErrRoleRequestPending
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	request := &model.RoleRequest{
		UserID:        userID,
		CurrentRole:   user.Role,
		RequestedRole: role,
		Status:        model.RoleRequestPending,
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, err
	}
	request.User = user

	logger.Info("Role request created", map[string]interface{}{
		"request_id":     request.ID,
		"user_id":        userID,
		"requested_role": role,
	})
	return request, nil
}

func (s *roleRequestService) ListPending() ([]model.RoleRequest, error) {
	return s.requestRepo.ListByStatus(model.RoleRequestPending)
}

func (s *roleRequestService) Approve(requestID, adminID uint) (*model.RoleRequest, error) {
	return s.resolve(requestID, adminID, model.RoleRequestApproved)
}

func (s *roleRequestService) Reject(requestID, adminID uint) (*model.RoleRequest, error) {
	return s.resolve(requestID, adminID, model.RoleRequestRejected)
}

func (s *roleRequestService) resolve(requestID, adminID uint, status model.RoleRequestStatus) (*model.RoleRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)

		request, err := requests.FindByID(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleRequestNotFound
			}
			return err
		}

		ok, err := requests.Resolve(requestID, status, adminID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleRequestHandled
		}

		if status != model.RoleRequestApproved {
			return nil
		}
		if err := s.userRepo.WithTx(tx).UpdateRole(request.UserID, request.RequestedRole); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warn("Role request not resolved", map[string]interface{}{
			"request_id": requestID,
			"status":     status,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.Info("Role request resolved", map[string]interface{}{
		"request_id": requestID,
		"status":     status,
		"admin_id":   adminID,
	})
	return s.requestRepo.FindByID(requestID)
}

func (s *roleRequestService) ChangeRole(userID uint, role model.UserRole, adminID uint) (*model.User, error) {
	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		requests := s.requestRepo.WithTx(tx)

		var err error
		user, err = s.findUser(users, userID)
		if err != nil {
			return err
		}
		if err := checkTransition(user, role); err != nil {
			return err
		}

		now := s.now()
		open, err := requests.FindPendingByUserID(userID)
		switch {
		case err == nil:
			if _, err := requests.Resolve(open.ID, model.RoleRequestRejected, adminID, now); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		record := &model.RoleRequest{
			UserID:         userID,
			CurrentRole:    user.Role,
			RequestedRole:  role,
			Status:         model.RoleRequestApproved,
			HandledBy:      &adminID,
			HandledAt:      &now,
			IsDirectChange: true,
		}
		if err := requests.Create(record); err != nil {
			return err
		}
		if err := users.UpdateRole(userID, role); err != nil {
			return err
		}
		user.Role = role
		return nil
	})
	if err != nil {
		logger.Warn("Direct role change failed", map[string]interface{}{
			"user_id": userID,
			"role":    role,
			"error":   err.Error(),
		})
		return nil, err
	}

	logger.Info("User role changed by admin", map[string]interface{}{
		"user_id":  userID,
		"role":     role,
		"admin_id": adminID,
	})
	return user, nil
}

func (s *roleRequestService) AdminIDs() ([]uint, error) {
	return s.userRepo.FindIDsByRole(model.RoleAdmin)
}
