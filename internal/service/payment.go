package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

// AddSplit allocates part of the total to a payment method. For wallet
// splits the balance is read from the wallet service at this moment,
// never from a cached value. Returns the still-unallocated remainder.
func (s *Service) AddSplit(ctx context.Context, id string, method domain.PaymentMethod, amount domain.Cents) (*domain.Checkout, domain.Cents, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if checkout.Status != domain.CheckoutStatusActive {
		return nil, 0, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}
	if !method.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidTransition, method)
	}

	var balance domain.Cents
	if method == domain.MethodWallet {
		balance, err = s.wallet.Balance(ctx, checkout.UserID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: wallet balance: %v", domain.ErrGatewayUnavailable, err)
		}
	}

	remaining, err := ledger.New(checkout).AddSplit(method, amount, balance)
	if err != nil {
		return nil, remaining, err
	}
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, 0, err
	}
	return checkout, remaining, nil
}

// RemoveSplit drops an unauthorized split by its position in the list.
func (s *Service) RemoveSplit(ctx context.Context, id string, index int) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status != domain.CheckoutStatusActive {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}

	if err := ledger.New(checkout).RemoveSplit(index); err != nil {
		return nil, err
	}
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// Settle runs a settlement round over the pending splits. The session is
// persisted even when settlement fails: partial progress (authorized
// splits, generated artifacts, failure reasons) must survive the error.
func (s *Service) Settle(ctx context.Context, id string, card *settlement.CardDetails) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}

	settleErr := s.orchestrator.Settle(ctx, checkout, card)

	// A cancel, retreat or abandonment sweep that ran while the gateway
	// calls were in flight bumped the stored generation on its own copy
	// of the session. Re-read before persisting: a stale outcome is
	// discarded, never applied over the newer state.
	stored, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored.Generation != checkout.Generation {
		log.Printf("stale settlement result discarded checkout_id = %v", id)
		return stored, nil
	}

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	if settleErr != nil {
		return checkout, settleErr
	}
	return checkout, nil
}

// Finalize produces the immutable order from a resolved session. Calling
// it again returns the same order.
func (s *Service) Finalize(ctx context.Context, id string) (*domain.Order, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	alreadyCompleted := checkout.Status == domain.CheckoutStatusCompleted

	o, err := s.finalizer.Finalize(ctx, checkout)
	if err != nil {
		return nil, err
	}

	if !alreadyCompleted {
		if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
			return nil, err
		}
	}
	return o, nil
}
