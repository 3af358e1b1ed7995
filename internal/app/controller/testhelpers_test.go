package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier keeps every message in memory.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[uint][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[uint][]string)}
}

func (n *recordingNotifier) Notify(userID uint, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[userID] = append(n.messages[userID], message)
}

func (n *recordingNotifier) For(userID uint) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[userID]...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set(middleware.UserIDKey, userID)
}

// newTestRouter returns an engine acting as userID with role. userID 0 is anonymous.
func newTestRouter(userID uint, role model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != 0 {
		router.Use(func(c *gin.Context) {
			setUserIDInContext(c, userID)
			c.Set(middleware.UserRoleKey, role)
			c.Next()
		})
	}
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var response apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// catalog is a seeded store: a buyer, an admin, one category and one product.
type catalog struct {
	db       *gorm.DB
	buyer    *model.User
	admin    *model.User
	books    *model.Category
	book     *model.Product
	notifier *recordingNotifier
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	testDB := newTestDB(t)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleUser}
	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	require.NoError(t, testDB.Create(buyer).Error)
	require.NoError(t, testDB.Create(admin).Error)

	books := &model.Category{Name: "Books"}
	require.NoError(t, testDB.Create(books).Error)

	book := &model.Product{Title: "Go in Action", Price: 50, Stock: 10, CategoryID: books.ID}
	require.NoError(t, testDB.Create(book).Error)

	return &catalog{
		db:       testDB,
		buyer:    buyer,
		admin:    admin,
		books:    books,
		book:     book,
		notifier: newRecordingNotifier(),
	}
}

func (s *catalog) cart(t *testing.T, userID uint) *model.Cart {
	t.Helper()
	c := &model.Cart{UserID: userID}
	require.NoError(t, s.db.Create(c).Error)
	return c
}

func (s *catalog) addItem(t *testing.T, cart *model.Cart, product *model.Product, quantity int) {
	t.Helper()
	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		BasePrice: product.Price * int64(quantity),
	}
	require.NoError(t, s.db.Omit("Product", "Cart").Create(item).Error)
}

func (s *catalog) coupon(t *testing.T, code string, discount float64) *model.Coupon {
	t.Helper()
	c := &model.Coupon{
		Code:           code,
		Type:           model.CouponTypePercentage,
		Discount:       discount,
		CategoryID:     s.books.ID,
		UsesLeft:       5,
		ExpirationDate: time.Now().AddDate(0, 1, 0),
	}
	require.NoError(t, s.db.Omit("Category").Create(c).Error)
	return c
}
