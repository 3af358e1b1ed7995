package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

// shop is a seeded catalog: a buyer, two categories and one book in stock.
type shop struct {
	db    *gorm.DB
	buyer *model.User
	books *model.Category
	toys  *model.Category
	book  *model.Product
}

func newShop(t *testing.T) *shop {
	t.Helper()
	testDB := newTestDB(t)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleUser}
	require.NoError(t, testDB.Create(buyer).Error)

	books := &model.Category{Name: "Books"}
	toys := &model.Category{Name: "Toys"}
	require.NoError(t, testDB.Create(books).Error)
	require.NoError(t, testDB.Create(toys).Error)

	book := &model.Product{Title: "Go in Action", Price: 50, Stock: 10, CategoryID: books.ID}
	require.NoError(t, testDB.Create(book).Error)

	return &shop{db: testDB, buyer: buyer, books: books, toys: toys, book: book}
}

func (s *shop) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "hash", Name: email, Role: model.RoleUser}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

func (s *shop) product(t *testing.T, title string, price int64, stock int, categoryID uint) *model.Product {
	t.Helper()
	p := &model.Product{Title: title, Price: price, Stock: stock, CategoryID: categoryID}
	require.NoError(t, s.db.Create(p).Error)
	return p
}

func (s *shop) cart(t *testing.T, userID uint) *model.Cart {
	t.Helper()
	c := &model.Cart{UserID: userID}
	require.NoError(t, s.db.Create(c).Error)
	return c
}

// addItem stores a line with the base price snapshot taken now.
func (s *shop) addItem(t *testing.T, cart *model.Cart, product *model.Product, quantity int) *model.CartItem {
	t.Helper()
	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		BasePrice: product.Price * int64(quantity),
	}
	require.NoError(t, s.db.Omit("Product", "Cart").Create(item).Error)
	return item
}

func (s *shop) coupon(t *testing.T, code string, typ model.CouponType, discount float64, categoryID uint, usesLeft int) *model.Coupon {
	t.Helper()
	c := &model.Coupon{
		Code:           code,
		Type:           typ,
		Discount:       discount,
		CategoryID:     categoryID,
		UsesLeft:       usesLeft,
		ExpirationDate: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, s.db.Omit("Category").Create(c).Error)
	return c
}

func (s *shop) reloadProduct(t *testing.T, id uint) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, s.db.First(&p, id).Error)
	return p
}

func (s *shop) reloadCoupon(t *testing.T, id uint) model.Coupon {
	t.Helper()
	var c model.Coupon
	require.NoError(t, s.db.Unscoped().First(&c, id).Error)
	return c
}

func (s *shop) reloadCart(t *testing.T, id uint) model.Cart {
	t.Helper()
	var c model.Cart
	require.NoError(t, s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&c, id).Error)
	return c
}

type recordingCache struct {
	groups []string
}

func (r *recordingCache) Invalidate(_ context.Context, group string) error {
	r.groups = append(r.groups, group)
	return nil
}
