package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/pkg/logger"
	rediscache "github.com/ikkim/storefront-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "cache:"
	CacheHeader    = "X-Cache"
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ResponseCache stores successful GET responses in Redis, grouped so a write
// can drop every cached page of a resource. A nil client disables caching.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

func groupPrefix(group string) string {
	return cacheKeyPrefix + group + ":"
}

type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET requests of group from Redis when cached. Redis errors
// fall through to the handler.
func (rc *ResponseCache) Middleware(group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || rc.client == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := groupPrefix(group) + c.Request.URL.RequestURI()

		var hit cachedResponse
		err := rediscache.GetJSON(ctx, rc.client, key, &hit)
		if err == nil {
			c.Header(CacheHeader, "HIT")
			c.Data(hit.Status, hit.ContentType, hit.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			GetLoggerFromContext(c).Warn("Response cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}

		c.Header(CacheHeader, "MISS")
		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		if capture.Status() != http.StatusOK {
			return
		}
		entry := cachedResponse{
			Status:      capture.Status(),
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.body.Bytes(),
		}
		if err := rediscache.SetJSON(ctx, rc.client, key, entry, rc.ttl); err != nil {
			GetLoggerFromContext(c).Warn("Response cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

// Invalidate drops every cached response of group.
func (rc *ResponseCache) Invalidate(ctx context.Context, group string) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	if err := rediscache.DeleteByPrefix(ctx, rc.client, groupPrefix(group)); err != nil {
		logger.Warn("Response cache invalidation failed", map[string]interface{}{
			"group": group,
			"error": err.Error(),
		})
		return err
	}
	return nil
}
