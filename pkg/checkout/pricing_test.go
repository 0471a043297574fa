package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/money"
)

func TestPriceWithTip(t *testing.T) {
	b := Price(money.FromRupees(800), money.FromRupees(49), money.FromRupees(75), nil)
	assert.Equal(t, money.FromRupees(924), b.Payable)
	assert.Zero(t, b.Discount)
}

func TestCouponDiscounts(t *testing.T) {
	tests := []struct {
		code      string
		itemTotal money.Paisa
		want      money.Paisa
	}{
		{"WELCOME25", money.FromRupees(400), money.FromRupees(100)},
		{"WELCOME25", money.FromRupees(2000), money.FromRupees(200)},
		{"welcome25", money.FromRupees(1), 25},
		{"FIRST50", money.FromRupees(30), money.FromRupees(30)},
		{"FIRST50", money.FromRupees(300), money.FromRupees(50)},
		{"FLAT150", money.FromRupees(998), 0},
		{"FLAT150", money.FromRupees(999), money.FromRupees(150)},
	}
	for _, tt := range tests {
		c, err := LookupCoupon(tt.code)
		require.NoError(t, err, tt.code)
		assert.Equal(t, tt.want, c.Discount(tt.itemTotal), "%s on %s", tt.code, tt.itemTotal)
	}
}

func TestLookupCouponUnknown(t *testing.T) {
	_, err := LookupCoupon("FREE")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPriceFloorsAtZero(t *testing.T) {
	c, _ := LookupCoupon("FIRST50")
	b := Price(0, 0, 0, &c)
	assert.Zero(t, b.Payable)
}

func TestCouponsIsACopy(t *testing.T) {
	list := Coupons()
	list[0].Code = "CHANGED"
	assert.Equal(t, "WELCOME25", Coupons()[0].Code)
}
