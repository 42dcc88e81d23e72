package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
)

// ApplyCoupon validates the code against the coupon table and attaches
// it to the session. Applying a second code replaces the first; only
// one coupon rides a checkout. Unauthorized splits are discarded since
// the total changed under them.
func (s *Service) ApplyCoupon(ctx context.Context, id, code string) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status != domain.CheckoutStatusActive {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}

	coupon, err := s.repo.GetCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Status != domain.CouponStatusActive {
		return nil, ErrCouponInactive
	}

	checkout.Coupon = coupon
	ledger.New(checkout).DiscardUnauthorized()
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

func (s *Service) RemoveCoupon(ctx context.Context, id string) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status != domain.CheckoutStatusActive {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}
	if checkout.Coupon == nil {
		return nil, ErrNoCouponApplied
	}

	checkout.Coupon = nil
	ledger.New(checkout).DiscardUnauthorized()
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// AcceptOffer attaches a bump or upsell to the session. Bumps are taken
// while the payment is still open. An upsell lands after settlement: the
// session reopens (back to ACTIVE) and the buyer allocates and settles
// the added amount before finalizing. Accepting twice is rejected.
func (s *Service) AcceptOffer(ctx context.Context, id, offerID string) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}
	if checkout.HasAcceptedOffer(offerID) {
		return nil, ErrOfferAlreadyAccepted
	}

	offer, err := s.offers.Offer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	switch offer.Type {
	case domain.OfferTypeBump:
		if checkout.Status != domain.CheckoutStatusActive {
			return nil, ErrOfferNotAvailable
		}
	case domain.OfferTypeUpsell:
		if checkout.Status != domain.CheckoutStatusPaymentResolved &&
			checkout.Status != domain.CheckoutStatusAwaitingReview {
			return nil, ErrOfferNotAvailable
		}
		// Money already moved stays; the delta becomes a new allocation.
		checkout.Status = domain.CheckoutStatusActive
	default:
		return nil, ErrOfferNotAvailable
	}

	checkout.AcceptedOffers = append(checkout.AcceptedOffers, *offer)
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}
