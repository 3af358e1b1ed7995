package model

import (
	"time"

	"gorm.io/gorm"
)

type RoleRequestStatus string

const (
	RoleRequestPending  RoleRequestStatus = "pending"
	RoleRequestApproved RoleRequestStatus = "approved"
	RoleRequestRejected RoleRequestStatus = "rejected"
)

// RoleRequest records a user's ask to change role and how an admin handled it.
// Direct changes made by an admin are stored as already-approved requests.
type RoleRequest struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	UserID         uint              `gorm:"not null;index" json:"user_id"`
	User           *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CurrentRole    UserRole          `gorm:"type:varchar(20);not null" json:"current_role"`
	RequestedRole  UserRole          `gorm:"type:varchar(20);not null" json:"requested_role"`
	Status         RoleRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	HandledBy      *uint             `json:"handled_by,omitempty"`
	HandledAt      *time.Time        `json:"handled_at,omitempty"`
	IsDirectChange bool              `gorm:"default:false" json:"is_direct_change"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (RoleRequest) TableName() string {
	return "role_requests"
}

// IsAssignableRole reports whether role can be granted through a request or a direct change.
func IsAssignableRole(role UserRole) bool {
	return role == RoleUser || role == RoleSeller
}
