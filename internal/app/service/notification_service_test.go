package service

import (
	"errors"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	userID  uint
	payload interface{}
}

type fakePusher struct {
	sent []pushed
	err  error
}

func (f *fakePusher) SendToUser(userID uint, payload interface{}) error {
	f.sent = append(f.sent, pushed{userID: userID, payload: payload})
	return f.err
}

func TestNotificationService_NotifyStoresAndPushes(t *testing.T) {
	s := newShop(t)
	pusher := &fakePusher{}
	svc := NewNotificationService(repository.NewNotificationRepository(s.db), pusher)

	svc.Notify(s.buyer.ID, "Your order has been created successfully.")

	require.Len(t, pusher.sent, 1)
	assert.Equal(t, s.buyer.ID, pusher.sent[0].userID)
	payload := pusher.sent[0].payload.(map[string]interface{})
	assert.Equal(t, "new_notification", payload["type"])
	assert.Equal(t, int64(1), payload["unread_count"])

	page, err := svc.ListNotifications(s.buyer.ID, NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Your order has been created successfully.", page.Items[0].Message)
	assert.False(t, page.Items[0].IsRead)
}

func TestNotificationService_PushFailureIsSwallowed(t *testing.T) {
	s := newShop(t)
	svc := NewNotificationService(repository.NewNotificationRepository(s.db), &fakePusher{err: errors.New("offline")})

	assert.NotPanics(t, func() { svc.Notify(s.buyer.ID, "hello") })

	count, err := svc.GetUnreadCount(s.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	s := newShop(t)
	svc := NewNotificationService(repository.NewNotificationRepository(s.db), nil)
	stranger := s.user(t, "stranger@example.com")

	svc.Notify(s.buyer.ID, "first")
	page, err := svc.ListNotifications(s.buyer.ID, NewPagination(1, 10))
	require.NoError(t, err)
	id := page.Items[0].ID

	_, err = svc.MarkAsRead(stranger.ID, id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	read, err := svc.MarkAsRead(s.buyer.ID, id)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	count, err := svc.GetUnreadCount(s.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.MarkAsRead(s.buyer.ID, 9999)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	s := newShop(t)
	svc := NewNotificationService(repository.NewNotificationRepository(s.db), nil)
	stranger := s.user(t, "stranger@example.com")

	svc.Notify(s.buyer.ID, "first")
	svc.Notify(s.buyer.ID, "second")
	svc.Notify(stranger.ID, "theirs")

	updated, err := svc.MarkAllAsRead(s.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := svc.GetUnreadCount(s.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = svc.GetUnreadCount(stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	updated, err = svc.MarkAllAsRead(s.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
