package repository

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type RoleRequestRepository interface {
	WithTx(tx *gorm.DB) RoleRequestRepository
	Create(request *model.RoleRequest) error
	FindByID(id uint) (*model.RoleRequest, error)
	// FindPendingByUserID returns gorm.ErrRecordNotFound when the user has no open request.
	FindPendingByUserID(userID uint) (*model.RoleRequest, error)
	// ListByStatus returns requests oldest first with their users preloaded.
	ListByStatus(status model.RoleRequestStatus) ([]model.RoleRequest, error)
	// Resolve closes a pending request. It reports false when the request was
	// already handled, so two admins cannot both resolve it.
	Resolve(id uint, status model.RoleRequestStatus, adminID uint, at time.Time) (bool, error)
}

type roleRequestRepository struct {
	db *gorm.DB
}

func NewRoleRequestRepository(db *gorm.DB) RoleRequestRepository {
	return &roleRequestRepository{db: db}
}

func (r *roleRequestRepository) WithTx(tx *gorm.DB) RoleRequestRepository {
	return &roleRequestRepository{db: tx}
}

func (r *roleRequestRepository) Create(request *model.RoleRequest) error {
	if err := r.db.Omit("User").Create(request).Error; err != nil {
		logger.Error("Failed to create role request", err, map[string]interface{}{
			"user_id":        request.UserID,
			"requested_role": request.RequestedRole,
		})
		return err
	}
	return nil
}

func (r *roleRequestRepository) FindByID(id uint) (*model.RoleRequest, error) {
	var request model.RoleRequest
	if err := r.db.Preload("User").First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *roleRequestRepository) FindPendingByUserID(userID uint) (*model.RoleRequest, error) {
	var request model.RoleRequest
	err := r.db.Where("user_id = ? AND status = ?", userID, model.RoleRequestPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *roleRequestRepository) ListByStatus(status model.RoleRequestStatus) ([]model.RoleRequest, error) {
	var requests []model.RoleRequest
	err := r.db.Preload("User").
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *roleRequestRepository) Resolve(id uint, status model.RoleRequestStatus, adminID uint, at time.Time) (bool, error) {
	result := r.db.Model(&model.RoleRequest{}).
		Where("id = ? AND status = ?", id, model.RoleRequestPending).
		Updates(map[string]interface{}{
			"status":     status,
			"handled_by": adminID,
			"handled_at": at,
		})
	if result.Error != nil {
		logger.Error("Failed to resolve role request", result.Error, map[string]interface{}{
			"request_id": id,
			"status":     status,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
