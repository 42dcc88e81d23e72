package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
)

// Quotes fetches carrier options for the destination. Digital-only
// checkouts short-circuit to the zero-cost digital quote. When no
// destination is given, the customer's address postal code is used.
func (s *Service) Quotes(ctx context.Context, id, destinationPostalCode string) ([]domain.ShippingQuote, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}

	if checkout.Snapshot.AllDigital() {
		return []domain.ShippingQuote{domain.DigitalDeliveryQuote()}, nil
	}

	if destinationPostalCode == "" {
		if checkout.Customer.Address == nil {
			return nil, fmt.Errorf("%w: no destination postal code", domain.ErrInvalidTransition)
		}
		destinationPostalCode = checkout.Customer.Address.PostalCode
	}

	return s.shipping.Quotes(ctx, destinationPostalCode, parcelsFor(checkout.Snapshot)), nil
}

// SelectQuote pins one carrier option on the session. The quote feeds
// the total, so switching it while splits exist would desync the
// ledger; unauthorized splits are discarded when the quote changes.
func (s *Service) SelectQuote(ctx context.Context, id string, quote domain.ShippingQuote) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}
	if quote.Price < 0 {
		return nil, fmt.Errorf("%w: negative shipping price", domain.ErrInvalidTransition)
	}

	checkout.SelectedQuote = &quote
	ledger.New(checkout).DiscardUnauthorized()
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// LookupAddress resolves a postal code through the address provider.
func (s *Service) LookupAddress(ctx context.Context, postalCode string) (*domain.Address, error) {
	return s.shipping.Lookup(ctx, postalCode)
}

// parcelsFor packs each physical unit into the default box. Good enough
// for quoting; dimensional packing is the carrier's problem.
func parcelsFor(snapshot domain.CartSnapshot) []domain.Parcel {
	var parcels []domain.Parcel
	for _, item := range snapshot.Items {
		if item.Digital {
			continue
		}
		for i := 0; i < item.Quantity; i++ {
			parcels = append(parcels, domain.Parcel{
				WeightGrams: 500,
				LengthCM:    20,
				WidthCM:     15,
				HeightCM:    10,
			})
		}
	}
	return parcels
}
