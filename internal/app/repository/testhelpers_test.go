package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	user     *model.User
	category *model.Category
	product  *model.Product
}

func setupFixture(t *testing.T) *fixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Books"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{Title: "Go in Action", Price: 50, Stock: 10, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)

	return &fixture{db: testDB, user: user, category: category, product: product}
}

func (f *fixture) coupon(t *testing.T, code string, usesLeft int) *model.Coupon {
	c := &model.Coupon{
		Code:           code,
		Type:           model.CouponTypePercentage,
		Discount:       10,
		CategoryID:     f.category.ID,
		UsesLeft:       usesLeft,
		ExpirationDate: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}
