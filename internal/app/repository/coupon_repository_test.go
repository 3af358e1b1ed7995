package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponRepository_CodeIsNormalizedOnSave(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	coupon := f.coupon(t, "  save10 ", 5)
	assert.Equal(t, "SAVE10", coupon.Code)

	found, err := repo.FindActiveByCode("Save10")
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, found.ID)

	found.Code = "welcome"
	require.NoError(t, repo.Update(found))
	_, err = repo.FindActiveByCode("WELCOME")
	assert.NoError(t, err)
}

func TestCouponRepository_SoftDelete(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	coupon := f.coupon(t, "GONE", 1)
	require.NoError(t, repo.Delete(coupon.ID))

	_, err := repo.FindActiveByCode("GONE")
	assert.Error(t, err)

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&model.Coupon{}).Where("id = ?", coupon.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "row must survive soft delete")
}

func TestCouponRepository_ConsumeUsesFloorsAtZero(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	coupon := f.coupon(t, "SAVE10", 5)

	require.NoError(t, repo.ConsumeUses(coupon.ID, 3))
	reloaded, err := repo.FindByID(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.UsesLeft)

	require.NoError(t, repo.ConsumeUses(coupon.ID, 4))
	reloaded, err = repo.FindByID(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.UsesLeft)
}

func TestCouponRepository_ListNewestFirst(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	for _, code := range []string{"ONE", "TWO", "THREE"} {
		f.coupon(t, code, 1)
	}

	coupons, total, err := repo.List(2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, coupons, 2)
	assert.Equal(t, "THREE", coupons[0].Code)
	assert.Equal(t, "TWO", coupons[1].Code)
}

func TestCouponRepository_ExpireBefore(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	expired := f.coupon(t, "OLD", 1)
	require.NoError(t, f.db.Model(expired).Update("expiration_date", time.Now().Add(-time.Hour)).Error)
	f.coupon(t, "FRESH", 1)

	n, err := repo.ExpireBefore(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindActiveByCode("OLD")
	assert.Error(t, err)
	_, err = repo.FindActiveByCode("FRESH")
	assert.NoError(t, err)
}

func TestCouponRepository_ExpireBefore_HonoursContext(t *testing.T) {
	f := setupFixture(t)
	repo := NewCouponRepository(f.db)

	expired := f.coupon(t, "OLD", 1)
	require.NoError(t, f.db.Model(expired).Update("expiration_date", time.Now().Add(-time.Hour)).Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := repo.ExpireBefore(ctx, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)

	_, err = repo.FindActiveByCode("OLD")
	assert.NoError(t, err, "a cancelled sweep deletes nothing")
}

func TestCouponRepository_ConsumeUses_SQL(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCouponRepository(gdb)

	mock.ExpectExec(`UPDATE "coupons" SET "uses_left"=CASE WHEN uses_left >= \$1 THEN uses_left - \$2 ELSE 0 END WHERE .*id = \$3`).
		WithArgs(2, 2, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ConsumeUses(4, 2))
	require.NoError(t, repo.ConsumeUses(4, 0), "zero uses issues no statement")
	assert.NoError(t, mock.ExpectationsWereMet())
}
