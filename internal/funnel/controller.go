// Package funnel owns the ordered checkout step sequence and prevents
// progression past an invalid step.
package funnel

import (
	"fmt"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
)

type Controller struct {
	checkout *domain.Checkout
}

func New(checkout *domain.Checkout) *Controller {
	return &Controller{checkout: checkout}
}

// Advance moves the funnel forward to the target step. Every step
// strictly before the target must pass its validity predicate; skipping
// a predecessor is impossible because the predicates are checked for
// the whole prefix, not just the current step.
func (c *Controller) Advance(to domain.FunnelStep) error {
	if c.checkout.Status.IsTerminal() {
		return fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, c.checkout.Status)
	}
	target := domain.StepIndex(to)
	if target < 0 {
		return fmt.Errorf("%w: unknown step %q", domain.ErrInvalidTransition, to)
	}
	current := domain.StepIndex(c.checkout.Step)
	if target <= current {
		return fmt.Errorf("%w: %s is not ahead of %s", domain.ErrInvalidTransition, to, c.checkout.Step)
	}

	for _, step := range []domain.FunnelStep{domain.StepIdentification, domain.StepShipping, domain.StepPayment} {
		if domain.StepIndex(step) >= target {
			break
		}
		if err := c.stepValid(step); err != nil {
			return err
		}
	}

	c.record(to)
	return nil
}

// Retreat moves back to any predecessor step. Settlement state created
// after the target step is cleared: unauthorized splits are discarded
// (authorized ones are money already moved and stay), artifacts for
// still-pending methods are kept for idempotent reuse, and the payment
// resolution is reset. The generation bump fences any gateway call
// still in flight.
func (c *Controller) Retreat(to domain.FunnelStep) error {
	if c.checkout.Status.IsTerminal() {
		return fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, c.checkout.Status)
	}
	target := domain.StepIndex(to)
	if target < 0 || target >= domain.StepIndex(c.checkout.Step) {
		return fmt.Errorf("%w: %s is not a predecessor of %s", domain.ErrInvalidTransition, to, c.checkout.Step)
	}

	if target < domain.StepIndex(domain.StepPayment) {
		ledger.New(c.checkout).DiscardUnauthorized()
		if c.checkout.Status == domain.CheckoutStatusPaymentResolved ||
			c.checkout.Status == domain.CheckoutStatusAwaitingReview {
			c.checkout.Status = domain.CheckoutStatusActive
		}
	}
	if target < domain.StepIndex(domain.StepShipping) {
		c.checkout.SelectedQuote = nil
	}

	c.checkout.Generation++
	c.record(to)
	return nil
}

// Cancel transitions to ABANDONED. Idempotent; no further mutation is
// accepted afterwards.
func (c *Controller) Cancel() error {
	if c.checkout.Status == domain.CheckoutStatusAbandoned {
		return nil
	}
	if !domain.CanTransitionTo(c.checkout.Status, domain.CheckoutStatusAbandoned) {
		return fmt.Errorf("%w: cannot abandon a %s checkout", domain.ErrInvalidTransition, c.checkout.Status)
	}
	c.checkout.Status = domain.CheckoutStatusAbandoned
	c.checkout.Generation++
	c.checkout.UpdatedAt = time.Now()
	return nil
}

func (c *Controller) stepValid(step domain.FunnelStep) error {
	switch step {
	case domain.StepIdentification:
		if !c.checkout.Customer.IdentificationComplete() {
			return fmt.Errorf("%w: identification incomplete", domain.ErrInvalidTransition)
		}
	case domain.StepShipping:
		if c.checkout.SelectedQuote == nil {
			return fmt.Errorf("%w: no shipping quote selected", domain.ErrInvalidTransition)
		}
	case domain.StepPayment:
		if c.checkout.Status != domain.CheckoutStatusPaymentResolved &&
			c.checkout.Status != domain.CheckoutStatusAwaitingReview {
			return fmt.Errorf("%w: settlement not resolved", domain.ErrInvalidTransition)
		}
	}
	return nil
}

func (c *Controller) record(to domain.FunnelStep) {
	now := time.Now()
	c.checkout.StepHistory = append(c.checkout.StepHistory, domain.StepChange{
		From: c.checkout.Step,
		To:   to,
		At:   now,
	})
	c.checkout.Step = to
	c.checkout.UpdatedAt = now
}
