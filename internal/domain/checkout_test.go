package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCheckout() *Checkout {
	return &Checkout{
		ID:     "checkout-1",
		CartID: "cart-1",
		Status: CheckoutStatusActive,
		Step:   StepIdentification,
		Snapshot: CartSnapshot{
			CartID:   "cart-1",
			Currency: "BRL",
			Items: []CartSnapshotItem{
				{ProductID: "p1", ProductName: "Produto", UnitPrice: 5000, Quantity: 2, Subtotal: 10000},
			},
			Subtotal: 10000,
		},
	}
}

func TestCheckoutTotal_SubtotalShippingAndBump(t *testing.T) {
	// subtotal 100.00, shipping 25.00, no coupon, one bump of 29.90
	c := testCheckout()
	c.SelectedQuote = &ShippingQuote{ID: "sedex", Price: 2500}
	c.AcceptedOffers = []Offer{{ID: "bump-1", Type: OfferTypeBump, Price: 2990}}

	assert.Equal(t, Cents(15490), c.Total())
	assert.Equal(t, "154.90", c.Total().String())
}

func TestCheckoutTotal_CouponCappedAtSubtotal(t *testing.T) {
	c := testCheckout()
	c.Coupon = &Coupon{Code: "BIG", Type: CouponTypeFixed, Value: 99999, Status: CouponStatusActive}

	assert.Equal(t, Cents(0), c.Total(), "fixed coupon never drives the total negative")
}

func TestCheckoutTotal_PercentageCoupon(t *testing.T) {
	c := testCheckout()
	c.Coupon = &Coupon{Code: "TEN", Type: CouponTypePercentage, Value: 10, Status: CouponStatusActive}

	assert.Equal(t, Cents(9000), c.Total())
}

func TestCouponDiscount_PercentageRoundsHalfUp(t *testing.T) {
	c := Coupon{Type: CouponTypePercentage, Value: 15}
	// 15% of 0.99 = 0.1485 -> 0.15
	assert.Equal(t, Cents(15), c.Discount(99))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStatusActive, CheckoutStatusPaymentResolved))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentResolved, CheckoutStatusCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusAwaitingReview, CheckoutStatusCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusFailedPayment, CheckoutStatusAbandoned))

	assert.False(t, CanTransitionTo(CheckoutStatusCompleted, CheckoutStatusActive))
	assert.False(t, CanTransitionTo(CheckoutStatusAbandoned, CheckoutStatusActive))
	assert.False(t, CanTransitionTo(CheckoutStatusActive, CheckoutStatusCompleted), "completion requires a resolved payment first")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusCompleted.IsTerminal())
	assert.True(t, CheckoutStatusAbandoned.IsTerminal())
	assert.True(t, CheckoutStatusFailedPayment.IsTerminal())
	assert.False(t, CheckoutStatusActive.IsTerminal())
	assert.False(t, CheckoutStatusAwaitingReview.IsTerminal())
}

func TestCartSnapshot_AllDigital(t *testing.T) {
	cart := &Cart{
		ID:     "cart-1",
		Status: CartStatusOpen,
		Items: []CartItem{
			{ProductID: "ebook", UnitPrice: 1990, Quantity: 1, Digital: true},
		},
	}
	snap := cart.Snapshot(cart.CreatedAt)
	assert.True(t, snap.AllDigital())

	cart.Items = append(cart.Items, CartItem{ProductID: "book", UnitPrice: 3990, Quantity: 1})
	snap = cart.Snapshot(cart.CreatedAt)
	assert.False(t, snap.AllDigital())
	assert.Equal(t, Cents(5980), snap.Subtotal)
}
