// Package order assembles the immutable Order record from a settled
// checkout.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// orderNamespace makes the order id a pure function of the checkout id,
// so a double finalize can never mint a second id.
var orderNamespace = uuid.MustParse("9fbb2a45-6feb-4fa6-9f26-5a6b8e5d7c1a")

type Store interface {
	// CreateOrder persists the order and its outbox event atomically.
	// A second insert for the same checkout returns ErrDuplicateCheckout.
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrderByCheckoutID(ctx context.Context, checkoutID string) (*domain.Order, error)
}

// ErrDuplicateCheckout is returned by Store implementations when an
// order already exists for the checkout.
var ErrDuplicateCheckout = errors.New("order already exists for checkout")

type Finalizer struct {
	store Store
}

func NewFinalizer(store Store) *Finalizer {
	return &Finalizer{store: store}
}

// Finalize builds the Order from a checkout in PAYMENT_RESOLVED or
// AWAITING_REVIEW. Deterministic: finalizing the same checkout twice
// yields the same order id and a single Order record; the duplicate
// call is a no-op success. Side effect: the checkout moves to COMPLETED.
func (f *Finalizer) Finalize(ctx context.Context, checkout *domain.Checkout) (*domain.Order, error) {
	switch checkout.Status {
	case domain.CheckoutStatusPaymentResolved, domain.CheckoutStatusAwaitingReview:
	case domain.CheckoutStatusCompleted:
		existing, err := f.store.GetOrderByCheckoutID(ctx, checkout.ID)
		if err != nil {
			return nil, fmt.Errorf("load finalized order: %w", err)
		}
		return existing, nil
	default:
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}

	o := f.assemble(checkout)

	if err := f.store.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateCheckout) {
			existing, getErr := f.store.GetOrderByCheckoutID(ctx, checkout.ID)
			if getErr != nil {
				return nil, fmt.Errorf("load duplicate order: %w", getErr)
			}
			checkout.Status = domain.CheckoutStatusCompleted
			checkout.Step = domain.StepCompleted
			return existing, nil
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	checkout.Status = domain.CheckoutStatusCompleted
	checkout.Step = domain.StepCompleted
	checkout.UpdatedAt = time.Now()
	return o, nil
}

func (f *Finalizer) assemble(checkout *domain.Checkout) *domain.Order {
	outcome := domain.PaymentOutcomePaid
	for _, s := range checkout.Splits {
		if s.Status == domain.SplitStatusPending {
			outcome = domain.PaymentOutcomePending
			break
		}
	}
	if checkout.Status == domain.CheckoutStatusAwaitingReview {
		outcome = domain.PaymentOutcomeUnderReview
	}

	shippingMethod := ""
	if checkout.SelectedQuote != nil {
		shippingMethod = fmt.Sprintf("%s %s", checkout.SelectedQuote.Carrier, checkout.SelectedQuote.Service)
	}

	return &domain.Order{
		ID:             uuid.NewSHA1(orderNamespace, []byte(checkout.ID)).String(),
		CheckoutID:     checkout.ID,
		UserID:         checkout.UserID,
		Items:          checkout.Snapshot.Items,
		Customer:       checkout.Customer,
		ShippingMethod: shippingMethod,
		AcceptedOffers: checkout.AcceptedOffers,
		Splits:         checkout.Splits,
		Subtotal:       checkout.Subtotal(),
		ShippingCost:   checkout.ShippingCost(),
		Discount:       checkout.Discount(),
		OffersTotal:    checkout.OffersTotal(),
		Total:          checkout.Total(),
		Currency:       checkout.Snapshot.Currency,
		Outcome:        outcome,
		CreatedAt:      time.Now(),
	}
}
