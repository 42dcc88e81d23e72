package domain

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

type Coupon struct {
	Code   string       `json:"code"`
	Type   CouponType   `json:"type"`
	Value  int64        `json:"value"` // percent for percentage, cents for fixed
	Status CouponStatus `json:"status"`
}

// Discount computes the coupon discount against a subtotal. A fixed
// coupon never drives the total negative; a percentage coupon rounds
// half-up to the nearest cent.
func (c Coupon) Discount(subtotal Cents) Cents {
	switch c.Type {
	case CouponTypePercentage:
		pct := subtotal.Decimal().Mul(percentOf(c.Value))
		return CentsFromDecimal(pct)
	case CouponTypeFixed:
		if Cents(c.Value) > subtotal {
			return subtotal
		}
		return Cents(c.Value)
	}
	return 0
}
