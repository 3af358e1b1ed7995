package service

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationPusher delivers a payload to a user's live sessions.
// *websocket.Hub satisfies it.
type NotificationPusher interface {
	SendToUser(userID uint, payload interface{}) error
}

type NotificationService interface {
	// Notify stores and pushes a message. Failures are logged, never returned.
	Notify(userID uint, message string)
	ListNotifications(userID uint, p Pagination) (PageResult[model.Notification], error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(userID, notificationID uint) (*model.Notification, error)
	MarkAllAsRead(userID uint) (int64, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	pusher NotificationPusher
}

func NewNotificationService(repo repository.NotificationRepository, pusher NotificationPusher) NotificationService {
	return &notificationService{
		repo:   repo,
		pusher: pusher,
	}
}

func (s *notificationService) Notify(userID uint, message string) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.Create(notification); err != nil {
		logger.Error("Failed to store notification", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	if s.pusher == nil {
		return
	}

	unread, _ := s.repo.CountUnread(userID)
	payload := map[string]interface{}{
		"type":         "new_notification",
		"unread_count": unread,
		"notification": notification,
	}
	if err := s.pusher.SendToUser(userID, payload); err != nil {
		logger.Warn("Failed to push notification", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *notificationService) ListNotifications(userID uint, p Pagination) (PageResult[model.Notification], error) {
	items, total, err := s.repo.FindByUserID(userID, p.Limit, p.Offset())
	if err != nil {
		return PageResult[model.Notification]{}, err
	}
	return newPageResult(items, total, p), nil
}

func (s *notificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}

// MarkAsRead marks the user's own notification as read. Other users' notifications
// are reported as not found.
func (s *notificationService) MarkAsRead(userID, notificationID uint) (*model.Notification, error) {
	notification, err := s.repo.FindForUser(notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}

	if err := s.repo.MarkAsRead(notificationID); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllAsRead returns how many notifications changed state.
func (s *notificationService) MarkAllAsRead(userID uint) (int64, error) {
	return s.repo.MarkAllAsRead(userID)
}
