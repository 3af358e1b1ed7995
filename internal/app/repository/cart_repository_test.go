package repository

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_CreateDefaultsToCartType(t *testing.T) {
	f := setupFixture(t)
	repo := NewCartRepository(f.db)

	cart := &model.Cart{UserID: f.user.ID}
	require.NoError(t, repo.Create(cart))

	assert.Equal(t, model.CartTypeCart, cart.Type)
	assert.NotEmpty(t, cart.UUID)
}

func TestCartRepository_FindActiveByUserID(t *testing.T) {
	f := setupFixture(t)
	repo := NewCartRepository(f.db)

	checkedOut := &model.Cart{UserID: f.user.ID, Type: model.CartTypeOrder}
	require.NoError(t, repo.Create(checkedOut))

	_, err := repo.FindActiveByUserID(f.user.ID)
	assert.Error(t, err, "an Order-typed cart is not active")

	active := &model.Cart{UserID: f.user.ID}
	require.NoError(t, repo.Create(active))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: active.ID, ProductID: f.product.ID, Quantity: 2, BasePrice: 100}))

	found, err := repo.FindActiveByUserID(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, f.product.ID, found.Items[0].Product.ID)
}

func TestCartRepository_MarkCheckedOutOnlyOnce(t *testing.T) {
	f := setupFixture(t)
	repo := NewCartRepository(f.db)

	cart := &model.Cart{UserID: f.user.ID}
	require.NoError(t, repo.Create(cart))

	ok, err := repo.MarkCheckedOut(cart.ID, "SAVE10", 90)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCheckedOut(cart.ID, "", 100)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(cart.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CartTypeOrder, reloaded.Type)
	assert.Equal(t, "SAVE10", reloaded.Coupon)
	assert.Equal(t, int64(90), reloaded.Price)
}

func TestCartRepository_Items(t *testing.T) {
	f := setupFixture(t)
	repo := NewCartRepository(f.db)

	cart := &model.Cart{UserID: f.user.ID}
	require.NoError(t, repo.Create(cart))

	second := &model.Product{Title: "Notebook", Price: 5, Stock: 3, CategoryID: f.category.ID}
	require.NoError(t, f.db.Create(second).Error)

	item := &model.CartItem{CartID: cart.ID, ProductID: f.product.ID, Quantity: 1, BasePrice: 50}
	require.NoError(t, repo.CreateItem(item))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: second.ID, Quantity: 3, BasePrice: 15}))

	byProduct, err := repo.FindItemByProduct(cart.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, byProduct.Quantity)

	page, total, err := repo.FindItemsPage(cart.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ProductID)

	require.NoError(t, repo.UpdateItemFinalPrice(item.ID, 45))
	stored, err := repo.FindItemByID(cart.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stored.BasePrice)
	assert.Equal(t, int64(45), stored.FinalPrice)

	deleted, err := repo.DeleteItem(cart.ID+1, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "item of another cart must not be removed")

	deleted, err = repo.DeleteItem(cart.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, repo.ClearItems(cart.ID))
	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
