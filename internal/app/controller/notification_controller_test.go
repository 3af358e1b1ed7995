package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotificationControllerTest(t *testing.T) (*catalog, service.NotificationService, *ws.Hub) {
	s := newCatalog(t)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	svc := service.NewNotificationService(repository.NewNotificationRepository(s.db), hub)
	return s, svc, hub
}

func notificationRouter(svc service.NotificationService, hub *ws.Hub, userID uint) *gin.Engine {
	ctrl := NewNotificationController(svc, hub, []string{"http://localhost:3000"})
	router := newTestRouter(userID, model.RoleUser)
	router.GET("/notifications", ctrl.GetNotifications)
	router.GET("/notifications/unread-count", ctrl.GetUnreadCount)
	router.GET("/notifications/ws", ctrl.Stream)
	router.PATCH("/notifications/read-all", ctrl.MarkAllAsRead)
	router.PATCH("/notifications/:id/read", ctrl.MarkAsRead)
	return router
}

func TestNotificationController_ListAndMarkRead(t *testing.T) {
	s, svc, hub := setupNotificationControllerTest(t)
	svc.Notify(s.buyer.ID, "first")
	svc.Notify(s.buyer.ID, "second")
	svc.Notify(s.admin.ID, "not yours")

	router := notificationRouter(svc, hub, s.buyer.ID)

	w := performRequest(router, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(2), response["total"])
	assert.Equal(t, float64(2), response["unread_count"])
	items := response["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "second", first["message"])

	w = performRequest(router, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", uint(first["id"].(float64))), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["notification"].(map[string]interface{})["is_read"])

	w = performRequest(router, http.MethodGet, "/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["unread_count"])

	var foreign model.Notification
	require.NoError(t, s.db.Where("user_id = ?", s.admin.ID).First(&foreign).Error)
	w = performRequest(router, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.NotificationNotFound, decodeError(t, w).Error)
}

func TestNotificationController_MarkAllAsRead(t *testing.T) {
	s, svc, hub := setupNotificationControllerTest(t)
	svc.Notify(s.buyer.ID, "first")
	svc.Notify(s.buyer.ID, "second")

	router := notificationRouter(svc, hub, s.buyer.ID)

	w := performRequest(router, http.MethodPatch, "/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["updated"])

	w = performRequest(router, http.MethodGet, "/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["unread_count"])
}

func TestNotificationController_Unauthorized(t *testing.T) {
	_, svc, hub := setupNotificationControllerTest(t)

	w := performRequest(notificationRouter(svc, hub, 0), http.MethodGet, "/notifications", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationController_StreamDeliversNewNotifications(t *testing.T) {
	s, svc, hub := setupNotificationControllerTest(t)

	server := httptest.NewServer(notificationRouter(svc, hub, s.buyer.ID))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/notifications/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.SessionCount(s.buyer.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	svc.Notify(s.buyer.ID, "Your order has been created successfully.")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload struct {
		Type         string             `json:"type"`
		UnreadCount  int64              `json:"unread_count"`
		Notification model.Notification `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "new_notification", payload.Type)
	assert.Equal(t, int64(1), payload.UnreadCount)
	assert.Equal(t, "Your order has been created successfully.", payload.Notification.Message)
}

func TestNotificationController_StreamRejectsForeignOrigin(t *testing.T) {
	s, svc, hub := setupNotificationControllerTest(t)

	server := httptest.NewServer(notificationRouter(svc, hub, s.buyer.ID))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/notifications/ws"
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
