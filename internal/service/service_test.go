package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cart"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	r "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
)

var ctx = context.Background()

func TestStart_SnapshotsAndConvertsCart(t *testing.T) {
	env := newTestService()

	checkout, err := env.svc.Start(ctx, "cart-1", "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, checkout.ID)
	assert.Equal(t, domain.StepIdentification, checkout.Step)
	assert.Equal(t, domain.CheckoutStatusActive, checkout.Status)
	assert.Equal(t, domain.Cents(10000), checkout.Subtotal())
	assert.Equal(t, []string{"cart-1"}, env.carts.ConvertedIDs)

	// Later cart edits never reach the session.
	env.carts.Carts["cart-1"].Items[0].UnitPrice = 1
	loaded, err := env.svc.Get(ctx, checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(10000), loaded.Subtotal())
}

func TestStart_RejectsConvertedCart(t *testing.T) {
	env := newTestService()
	env.carts.Carts["cart-1"].Status = domain.CartStatusConverted

	_, err := env.svc.Start(ctx, "cart-1", "user-1")
	assert.ErrorIs(t, err, cart.ErrCartClosed)
}

func TestStart_RejectsEmptyCart(t *testing.T) {
	env := newTestService()
	env.carts.Carts["cart-1"].Items = nil

	_, err := env.svc.Start(ctx, "cart-1", "user-1")
	assert.ErrorIs(t, err, cart.ErrCartEmpty)
}

func TestStart_UnknownCart(t *testing.T) {
	env := newTestService()
	_, err := env.svc.Start(ctx, "nope", "user-1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestStart_DigitalCartPreselectsDeliveryQuote(t *testing.T) {
	env := newTestService()
	env.carts.Carts["cart-1"].Items = []domain.CartItem{
		{ProductID: "ebook", UnitPrice: 1990, Quantity: 1, Digital: true},
	}

	checkout, err := env.svc.Start(ctx, "cart-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, checkout.SelectedQuote)
	assert.Equal(t, domain.Cents(0), checkout.SelectedQuote.Price)

	quotes, err := env.svc.Quotes(ctx, checkout.ID, "04538-133")
	require.NoError(t, err)
	require.Len(t, quotes, 1, "digital checkout never calls the carrier")
}

// startAtPayment runs a checkout through identification and shipping
// selection, leaving it on the payment step.
func startAtPayment(t *testing.T, env *testEnv) *domain.Checkout {
	t.Helper()
	checkout, err := env.svc.Start(ctx, "cart-1", "user-1")
	require.NoError(t, err)

	_, err = env.svc.UpdateCustomer(ctx, checkout.ID, domain.Customer{
		Name: "Ana", Email: "ana@example.com", Document: "12345678900", Phone: "11999990000",
	})
	require.NoError(t, err)

	_, err = env.svc.Advance(ctx, checkout.ID, domain.StepShipping)
	require.NoError(t, err)

	_, err = env.svc.SelectQuote(ctx, checkout.ID, domain.ShippingQuote{ID: "pac", Carrier: "Correios", Service: "PAC", Price: 2500})
	require.NoError(t, err)

	c, err := env.svc.Advance(ctx, checkout.ID, domain.StepPayment)
	require.NoError(t, err)
	return c
}

func TestUpdateCustomer_MergesPartials(t *testing.T) {
	env := newTestService()
	checkout, err := env.svc.Start(ctx, "cart-1", "user-1")
	require.NoError(t, err)

	_, err = env.svc.UpdateCustomer(ctx, checkout.ID, domain.Customer{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	c, err := env.svc.UpdateCustomer(ctx, checkout.ID, domain.Customer{Document: "12345678900", Phone: "11999990000"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", c.Customer.Name)
	assert.True(t, c.Customer.IdentificationComplete())
}

func TestAdvance_PersistsStep(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	loaded, err := env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, loaded.Step)
	assert.Len(t, loaded.StepHistory, 2)
}

func TestApplyCoupon(t *testing.T) {
	env := newTestService()
	env.repo.coupons["DEZ"] = &domain.Coupon{Code: "DEZ", Type: domain.CouponTypePercentage, Value: 10, Status: domain.CouponStatusActive}
	c := startAtPayment(t, env)

	updated, err := env.svc.ApplyCoupon(ctx, c.ID, "DEZ")
	require.NoError(t, err)
	// subtotal 100.00 + shipping 25.00 - 10.00
	assert.Equal(t, domain.Cents(11500), updated.Total())
}

func TestApplyCoupon_InactiveAndUnknown(t *testing.T) {
	env := newTestService()
	env.repo.coupons["OLD"] = &domain.Coupon{Code: "OLD", Type: domain.CouponTypeFixed, Value: 500, Status: domain.CouponStatusInactive}
	c := startAtPayment(t, env)

	_, err := env.svc.ApplyCoupon(ctx, c.ID, "OLD")
	assert.ErrorIs(t, err, ErrCouponInactive)

	_, err = env.svc.ApplyCoupon(ctx, c.ID, "NOPE")
	assert.ErrorIs(t, err, r.ErrCouponNotFound)
}

func TestApplyCoupon_DiscardsUnauthorizedSplits(t *testing.T) {
	env := newTestService()
	env.repo.coupons["DEZ"] = &domain.Coupon{Code: "DEZ", Type: domain.CouponTypePercentage, Value: 10, Status: domain.CouponStatusActive}
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodPix, 12500)
	require.NoError(t, err)

	updated, err := env.svc.ApplyCoupon(ctx, c.ID, "DEZ")
	require.NoError(t, err)
	assert.Empty(t, updated.Splits, "totals moved under the allocation")
}

func TestRemoveCoupon(t *testing.T) {
	env := newTestService()
	env.repo.coupons["DEZ"] = &domain.Coupon{Code: "DEZ", Type: domain.CouponTypePercentage, Value: 10, Status: domain.CouponStatusActive}
	c := startAtPayment(t, env)

	_, err := env.svc.RemoveCoupon(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNoCouponApplied)

	_, err = env.svc.ApplyCoupon(ctx, c.ID, "DEZ")
	require.NoError(t, err)
	updated, err := env.svc.RemoveCoupon(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Coupon)
	assert.Equal(t, domain.Cents(12500), updated.Total())
}

func TestAddSplit_WalletBalanceReadAtCallTime(t *testing.T) {
	env := newTestService()
	env.wallet.BalanceValue = 5000
	c := startAtPayment(t, env)

	// total is 125.00; a 60.00 wallet split exceeds the 50.00 balance
	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 6000)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, remaining, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 5000)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(7500), remaining)
}

func TestAddSplit_UnknownMethod(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.PaymentMethod("cheque"), 1000)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAcceptOffer_BumpBeforeSettlement(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	updated, err := env.svc.AcceptOffer(ctx, c.ID, "bump-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(15490), updated.Total(), "100.00 + 25.00 + 29.90")

	_, err = env.svc.AcceptOffer(ctx, c.ID, "bump-1")
	assert.ErrorIs(t, err, ErrOfferAlreadyAccepted)
}

func TestAcceptOffer_UpsellOnlyAfterSettlement(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, err := env.svc.AcceptOffer(ctx, c.ID, "upsell-1")
	assert.ErrorIs(t, err, ErrOfferNotAvailable)

	_, _, err = env.svc.AddSplit(ctx, c.ID, domain.MethodPix, 12500)
	require.NoError(t, err)
	settled, err := env.svc.Settle(ctx, c.ID, nil)
	require.NoError(t, err)
	require.Equal(t, domain.CheckoutStatusPaymentResolved, settled.Status)

	// The upsell reopens the session for the added amount.
	updated, err := env.svc.AcceptOffer(ctx, c.ID, "upsell-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusActive, updated.Status)
	assert.Equal(t, domain.Cents(9990), updated.Total()-updated.AllocatedTotal())
}

func TestSelectQuote_ReselectionDiscardsUnauthorizedSplits(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodPix, 12500)
	require.NoError(t, err)

	// A cheaper quote lowers the total; keeping the split would leave
	// more allocated than owed.
	updated, err := env.svc.SelectQuote(ctx, c.ID, domain.ShippingQuote{ID: "pickup", Carrier: "Retirada", Service: "Balcão", Price: 0})
	require.NoError(t, err)
	assert.Empty(t, updated.Splits)
	assert.LessOrEqual(t, updated.AllocatedTotal(), updated.Total())
}

func TestSettle_CancelWhileTransferInFlightIsNotResurrected(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 12500)
	require.NoError(t, err)

	// The buyer walks away while the wallet call is still in flight;
	// the cancel lands on the stored session, not the settling copy.
	env.wallet.TransferHook = func() {
		_, err := env.svc.Cancel(ctx, c.ID)
		require.NoError(t, err)
	}

	settled, err := env.svc.Settle(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusAbandoned, settled.Status)

	loaded, err := env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusAbandoned, loaded.Status)
}

func TestSettle_PersistsPartialProgressOnFailure(t *testing.T) {
	env := newTestService()
	env.wallet.BalanceValue = 12500
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 12500)
	require.NoError(t, err)

	env.wallet.BalanceValue = 0 // balance moved between allocation and settlement
	_, err = env.svc.Settle(ctx, c.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	loaded, err := env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusFailedPayment, loaded.Status)
	assert.Equal(t, domain.SplitStatusFailed, loaded.Splits[0].Status)
}

func TestFinalize_EndToEnd(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 12500)
	require.NoError(t, err)
	_, err = env.svc.Settle(ctx, c.ID, nil)
	require.NoError(t, err)

	o, err := env.svc.Finalize(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(12500), o.Total)
	assert.Equal(t, domain.PaymentOutcomePaid, o.Outcome)
	assert.Equal(t, "order.created", env.repo.Events[len(env.repo.Events)-1])

	loaded, err := env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusCompleted, loaded.Status)

	again, err := env.svc.Finalize(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, again.ID)

	got, err := env.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestCancel_RefundsAuthorizedWalletSplits(t *testing.T) {
	env := newTestService()
	c := startAtPayment(t, env)

	_, _, err := env.svc.AddSplit(ctx, c.ID, domain.MethodWallet, 12500)
	require.NoError(t, err)
	_, err = env.svc.Settle(ctx, c.ID, nil)
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusAbandoned, cancelled.Status)
	assert.Equal(t, 1, env.wallet.RefundCalls)
	assert.Contains(t, env.repo.Events, "checkout.abandoned")

	// Idempotent: a second cancel refunds nothing and adds no event.
	events := len(env.repo.Events)
	_, err = env.svc.Cancel(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.wallet.RefundCalls)
	assert.Len(t, env.repo.Events, events)
}

func TestQuotes_UsesCustomerAddressWhenNoDestination(t *testing.T) {
	env := newTestService()
	checkout, err := env.svc.Start(ctx, "cart-1", "user-1")
	require.NoError(t, err)

	_, err = env.svc.Quotes(ctx, checkout.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no address collected yet")

	_, err = env.svc.UpdateCustomer(ctx, checkout.ID, domain.Customer{
		Name: "Ana", Email: "ana@example.com", Document: "1", Phone: "1",
		Address: &domain.Address{City: "São Paulo", State: "SP", PostalCode: "04538-133"},
	})
	require.NoError(t, err)

	quotes, err := env.svc.Quotes(ctx, checkout.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, quotes)
}
