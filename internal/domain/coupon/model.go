package coupon

import (
	"github.com/shopspring/decimal"
	"github.com/tiffinly/tiffinly/internal/types"
)

// Coupon is a percent or flat discount applied once to a group's
// summed cycle amount.
type Coupon struct {
	ID     string           `json:"id"`
	Code   string           `json:"code"`
	Type   types.CouponType `json:"type"`
	Value  decimal.Decimal  `json:"value"`
	// MinAmount gates application: no discount below this subtotal.
	MinAmount decimal.Decimal `json:"min_amount"`
	// MaxDiscount caps the discount; zero means uncapped.
	MaxDiscount decimal.Decimal `json:"max_discount"`
	Active      bool            `json:"active"`
	types.BaseModel
}

// DiscountFor computes the discount this coupon yields on the given
// amount. The discount never exceeds the pre-discount amount, respects
// the minimum-amount gate and the maximum-discount cap, and is rounded
// to 2 decimal places.
func (c *Coupon) DiscountFor(amount decimal.Decimal) decimal.Decimal {
	if !c.Active || amount.LessThan(c.MinAmount) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.Type {
	case types.CouponTypePercent:
		discount = amount.Mul(c.Value).Div(decimal.NewFromInt(100))
	case types.CouponTypeFlat:
		discount = c.Value
	default:
		return decimal.Zero
	}

	if c.MaxDiscount.IsPositive() && discount.GreaterThan(c.MaxDiscount) {
		discount = c.MaxDiscount
	}
	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}
