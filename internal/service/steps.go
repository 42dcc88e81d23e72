package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/funnel"
)

// Advance moves the funnel forward after every predecessor step passes
// its validity predicate.
func (s *Service) Advance(ctx context.Context, id string, to domain.FunnelStep) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := funnel.New(checkout).Advance(to); err != nil {
		return nil, err
	}

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// Retreat goes back to a predecessor step, discarding unauthorized
// settlement state created past it.
func (s *Service) Retreat(ctx context.Context, id string, to domain.FunnelStep) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := funnel.New(checkout).Retreat(to); err != nil {
		return nil, err
	}

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// Cancel abandons the session. Authorized wallet splits are refunded
// best effort; card authorizations are left for manual reconciliation.
// The abandonment event goes through the outbox like any other.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	wasAbandoned := checkout.Status == domain.CheckoutStatusAbandoned

	if err := funnel.New(checkout).Cancel(); err != nil {
		return nil, err
	}

	if !wasAbandoned {
		s.refundWalletSplits(ctx, checkout)
	}

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}

	if !wasAbandoned {
		payload, err := json.Marshal(map[string]interface{}{
			"checkout_id":  checkout.ID,
			"cart_id":      checkout.CartID,
			"user_id":      checkout.UserID,
			"last_step":    checkout.Step,
			"abandoned_at": time.Now(),
		})
		if err == nil {
			if err := s.repo.InsertEvent(ctx, checkout.ID, "checkout.abandoned", payload); err != nil {
				log.Printf("failed to record abandonment event for %v: %v", checkout.ID, err)
			}
		}
	}
	return checkout, nil
}

func (s *Service) refundWalletSplits(ctx context.Context, checkout *domain.Checkout) {
	for _, split := range checkout.Splits {
		if split.Method != domain.MethodWallet || split.Status != domain.SplitStatusAuthorized {
			continue
		}
		if err := s.wallet.Refund(ctx, checkout.UserID, split.TransactionID, split.Amount); err != nil {
			log.Printf("wallet refund failed checkout_id = %v tx = %v: %v", checkout.ID, split.TransactionID, err)
		}
	}
}
