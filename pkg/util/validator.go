package util

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// NormalizeCouponCode is the canonical stored form of a coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCouponCode checks the code after trimming surrounding whitespace.
func IsValidCouponCode(code string) bool {
	return couponCodePattern.MatchString(strings.TrimSpace(code))
}

func validateCouponCode(fl validator.FieldLevel) bool {
	return IsValidCouponCode(fl.Field().String())
}

// RegisterValidators adds the custom binding tags to gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("coupon_code", validateCouponCode)
}
