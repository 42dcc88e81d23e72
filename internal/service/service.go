// Package service drives the checkout lifecycle: it loads sessions,
// applies funnel/ledger/settlement rules and persists the result.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cart"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
	r "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/shipping"
)

// CartStore loads carts from the shared cart database.
type CartStore interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	MarkConverted(ctx context.Context, cartID string) error
}

// OfferCatalog resolves the order bumps and upsells a checkout may see.
type OfferCatalog interface {
	Offer(ctx context.Context, id string) (*domain.Offer, error)
}

type Service struct {
	repo         r.RepoInterface
	carts        CartStore
	shipping     *shipping.Service
	orchestrator *settlement.Orchestrator
	wallet       settlement.WalletLedger
	finalizer    *order.Finalizer
	offers       OfferCatalog
}

func New(
	repo r.RepoInterface,
	carts CartStore,
	shippingSvc *shipping.Service,
	orchestrator *settlement.Orchestrator,
	wallet settlement.WalletLedger,
	finalizer *order.Finalizer,
	offers OfferCatalog,
) *Service {
	return &Service{
		repo:         repo,
		carts:        carts,
		shipping:     shippingSvc,
		orchestrator: orchestrator,
		wallet:       wallet,
		finalizer:    finalizer,
		offers:       offers,
	}
}

// Start opens a checkout from an OPEN cart. The cart is snapshotted and
// flipped to CONVERTED; later cart edits never reach the session. A
// fully digital cart gets the zero-cost digital quote pre-selected, the
// shipping step then passes without a carrier call.
func (s *Service) Start(ctx context.Context, cartID, userID string) (*domain.Checkout, error) {
	c, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CartStatusOpen {
		return nil, cart.ErrCartClosed
	}
	if len(c.Items) == 0 {
		return nil, cart.ErrCartEmpty
	}

	now := time.Now()
	checkout := &domain.Checkout{
		ID:        uuid.NewString(),
		CartID:    c.ID,
		UserID:    userID,
		Snapshot:  c.Snapshot(now),
		Step:      domain.StepIdentification,
		Status:    domain.CheckoutStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if checkout.Snapshot.AllDigital() {
		q := domain.DigitalDeliveryQuote()
		checkout.SelectedQuote = &q
	}

	if err := s.carts.MarkConverted(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("convert cart: %w", err)
	}
	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Checkout, error) {
	return s.repo.GetCheckout(ctx, id)
}

// UpdateCustomer overlays the submitted identification fields onto the
// session. Partial submissions are fine; the identification predicate is
// only enforced when advancing past the step.
func (s *Service) UpdateCustomer(ctx context.Context, id string, in domain.Customer) (*domain.Checkout, error) {
	checkout, err := s.repo.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkout.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}

	checkout.Customer = checkout.Customer.Merge(in)
	checkout.UpdatedAt = time.Now()

	if err := s.repo.SaveCheckout(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, orderID)
}
