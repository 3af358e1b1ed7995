package service

import (
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// PricingLine is one cart line as seen by the pricing engine.
type PricingLine struct {
	ItemID     uint
	ProductID  uint
	CategoryID uint
	BasePrice  int64
}

// PricedLine is a PricingLine with its discounted price.
type PricedLine struct {
	PricingLine
	FinalPrice int64
}

// PricingResult is the outcome of PriceCart.
type PricingResult struct {
	Lines           []PricedLine
	Subtotal        int64
	Total           int64
	DiscountApplied int64
	AppliedCodes    []string
	Matches         map[uint]int // coupon ID -> lines discounted
}

// CouponCodeString joins the applied codes the way they are stored on orders and carts.
func (r PricingResult) CouponCodeString() string {
	return strings.Join(r.AppliedCodes, ",")
}

var hundred = decimal.NewFromInt(100)

// ApplyCoupon returns price after one coupon, rounded half away from zero and never negative.
func ApplyCoupon(price int64, coupon model.Coupon) int64 {
	p := decimal.NewFromInt(price)
	d := decimal.NewFromFloat(coupon.Discount)

	var discounted decimal.Decimal
	switch coupon.Type {
	case model.CouponTypePercentage:
		discounted = p.Mul(decimal.NewFromInt(1).Sub(d.Div(hundred)))
	case model.CouponTypeFixed:
		discounted = p.Sub(d)
	default:
		return price
	}

	result := discounted.Round(0).IntPart()
	if result < 0 {
		return 0
	}
	return result
}

// PriceCart applies coupons in order to every line of their category. Each coupon
// discounts the price left by the previous ones. Every coupon passed in is listed
// as applied, whether or not it matched a line.
func PriceCart(lines []PricingLine, coupons []model.Coupon) PricingResult {
	result := PricingResult{
		Lines:        make([]PricedLine, len(lines)),
		AppliedCodes: make([]string, 0, len(coupons)),
		Matches:      make(map[uint]int, len(coupons)),
	}

	for i, line := range lines {
		result.Lines[i] = PricedLine{PricingLine: line, FinalPrice: line.BasePrice}
		result.Subtotal += line.BasePrice
	}

	for _, coupon := range coupons {
		result.AppliedCodes = append(result.AppliedCodes, coupon.Code)
		for i := range result.Lines {
			line := &result.Lines[i]
			if line.CategoryID != coupon.CategoryID {
				continue
			}
			before := line.FinalPrice
			line.FinalPrice = ApplyCoupon(before, coupon)
			result.DiscountApplied += before - line.FinalPrice
			result.Matches[coupon.ID]++
		}
	}

	for _, line := range result.Lines {
		result.Total += line.FinalPrice
	}
	return result
}
