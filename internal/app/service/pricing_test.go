package service

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func pct(id uint, code string, d float64, category uint) model.Coupon {
	return model.Coupon{ID: id, Code: code, Type: model.CouponTypePercentage, Discount: d, CategoryID: category}
}

func fixed(id uint, code string, d float64, category uint) model.Coupon {
	return model.Coupon{ID: id, Code: code, Type: model.CouponTypeFixed, Discount: d, CategoryID: category}
}

func TestApplyCoupon(t *testing.T) {
	tests := []struct {
		name   string
		price  int64
		coupon model.Coupon
		want   int64
	}{
		{"percentage", 100, pct(1, "P10", 10, 1), 90},
		{"percentage rounds half up", 5, pct(1, "P10", 10, 1), 5},
		{"percentage rounds down", 45, pct(1, "P15", 15, 1), 38},
		{"fractional percentage", 100, pct(1, "P333", 33.3, 1), 67},
		{"full percentage", 80, pct(1, "P100", 100, 1), 0},
		{"fixed", 100, fixed(1, "F5", 5, 1), 95},
		{"fixed with fraction", 101, fixed(1, "F25", 2.5, 1), 99},
		{"fixed floors at zero", 3, fixed(1, "F5", 5, 1), 0},
		{"unknown type leaves price", 100, model.Coupon{Type: "bogus", Discount: 50}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyCoupon(tt.price, tt.coupon))
		})
	}
}

func TestPriceCart_NoCoupons(t *testing.T) {
	lines := []PricingLine{
		{ItemID: 1, CategoryID: 1, BasePrice: 100},
		{ItemID: 2, CategoryID: 2, BasePrice: 40},
	}

	result := PriceCart(lines, nil)

	assert.Equal(t, int64(140), result.Subtotal)
	assert.Equal(t, int64(140), result.Total)
	assert.Zero(t, result.DiscountApplied)
	assert.Empty(t, result.AppliedCodes)
	assert.Equal(t, "", result.CouponCodeString())
	for i, line := range result.Lines {
		assert.Equal(t, lines[i].BasePrice, line.FinalPrice)
	}
}

func TestPriceCart_OnlyMatchingCategory(t *testing.T) {
	lines := []PricingLine{
		{ItemID: 1, CategoryID: 1, BasePrice: 100},
		{ItemID: 2, CategoryID: 2, BasePrice: 40},
	}

	result := PriceCart(lines, []model.Coupon{pct(7, "SAVE10", 10, 1)})

	assert.Equal(t, int64(90), result.Lines[0].FinalPrice)
	assert.Equal(t, int64(40), result.Lines[1].FinalPrice)
	assert.Equal(t, int64(10), result.DiscountApplied)
	assert.Equal(t, int64(130), result.Total)
	assert.Equal(t, map[uint]int{7: 1}, result.Matches)
}

func TestPriceCart_CouponsCompoundInOrder(t *testing.T) {
	lines := []PricingLine{{ItemID: 1, CategoryID: 1, BasePrice: 100}}

	pctFirst := PriceCart(lines, []model.Coupon{pct(1, "SAVE10", 10, 1), fixed(2, "FIVEOFF", 5, 1)})
	fixedFirst := PriceCart(lines, []model.Coupon{fixed(2, "FIVEOFF", 5, 1), pct(1, "SAVE10", 10, 1)})

	assert.Equal(t, int64(85), pctFirst.Total)
	assert.Equal(t, int64(15), pctFirst.DiscountApplied)
	assert.Equal(t, "SAVE10,FIVEOFF", pctFirst.CouponCodeString())

	// 100 - 5 = 95, then 10% off 95 = 85.5 rounds to 86
	assert.Equal(t, int64(86), fixedFirst.Total)
	assert.Equal(t, int64(14), fixedFirst.DiscountApplied)
	assert.Equal(t, "FIVEOFF,SAVE10", fixedFirst.CouponCodeString())
}

func TestPriceCart_UnmatchedCouponIsStillListed(t *testing.T) {
	lines := []PricingLine{{ItemID: 1, CategoryID: 1, BasePrice: 100}}

	result := PriceCart(lines, []model.Coupon{pct(3, "TOYS20", 20, 2)})

	assert.Equal(t, []string{"TOYS20"}, result.AppliedCodes)
	assert.Zero(t, result.DiscountApplied)
	assert.Zero(t, result.Matches[3])
}

func TestPriceCart_CountsEveryMatchedLine(t *testing.T) {
	lines := []PricingLine{
		{ItemID: 1, CategoryID: 1, BasePrice: 100},
		{ItemID: 2, CategoryID: 1, BasePrice: 200},
		{ItemID: 3, CategoryID: 2, BasePrice: 300},
	}

	result := PriceCart(lines, []model.Coupon{pct(9, "BOOKS", 50, 1)})

	assert.Equal(t, 2, result.Matches[9])
	assert.Equal(t, int64(150), result.DiscountApplied)
	assert.Equal(t, result.Subtotal-result.DiscountApplied, result.Total)
}

func TestPriceCart_DiscountNeverExceedsSubtotal(t *testing.T) {
	lines := []PricingLine{
		{ItemID: 1, CategoryID: 1, BasePrice: 10},
		{ItemID: 2, CategoryID: 1, BasePrice: 4},
	}

	result := PriceCart(lines, []model.Coupon{fixed(1, "BIG", 1000, 1), fixed(2, "BIGGER", 5000, 1)})

	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, result.Subtotal, result.DiscountApplied)
	for _, line := range result.Lines {
		assert.GreaterOrEqual(t, line.FinalPrice, int64(0))
	}
}
