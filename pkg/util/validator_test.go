package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCouponCode("  save10 "))
	assert.Equal(t, "SUMMER-SALE", NormalizeCouponCode("Summer-Sale"))
	assert.Equal(t, "", NormalizeCouponCode("   "))
}

func TestIsValidCouponCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"SAVE10", true},
		{" save10 ", true},
		{"BLACK_FRIDAY-2024", true},
		{"AB", false},
		{"HAS SPACE", false},
		{"bad!", false},
		{strings.Repeat("A", 33), false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCouponCode(tt.code))
		})
	}
}

func TestRegisterValidators_BindingTag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	type request struct {
		Code string `json:"code" binding:"required,coupon_code"`
	}

	router := gin.New()
	router.POST("/coupons", func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/coupons", strings.NewReader(`{"code":"SAVE10"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/coupons", strings.NewReader(`{"code":"no way"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
