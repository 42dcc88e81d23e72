// Package ledger maintains the payment-split allocations of a checkout
// and enforces the money-conservation invariant: the sum of split
// amounts never exceeds the checkout total.
package ledger

import (
	"errors"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

var ErrSplitNotFound = errors.New("split index out of range")

type Ledger struct {
	checkout *domain.Checkout
}

func New(checkout *domain.Checkout) *Ledger {
	return &Ledger{checkout: checkout}
}

// Remaining is total minus everything already allocated. Comparisons
// are exact because amounts are integer cents.
func (l *Ledger) Remaining() domain.Cents {
	return l.checkout.Total() - l.checkout.AllocatedTotal()
}

// IsComplete reports whether the total is fully allocated and at least
// one split exists.
func (l *Ledger) IsComplete() bool {
	return len(l.checkout.Splits) > 0 && l.Remaining() == 0
}

// AddSplit appends a pending split. The wallet balance is the caller's
// responsibility to re-read right before calling: it is an external,
// authoritative resource and must never be a cached value.
func (l *Ledger) AddSplit(method domain.PaymentMethod, amount, walletBalance domain.Cents) (domain.Cents, error) {
	if amount <= 0 {
		return l.Remaining(), domain.ErrAllocationOverflow
	}
	if amount > l.Remaining() {
		return l.Remaining(), domain.ErrAllocationOverflow
	}
	if method == domain.MethodWallet && amount > walletBalance {
		return l.Remaining(), domain.ErrInsufficientBalance
	}

	l.checkout.Splits = append(l.checkout.Splits, domain.PaymentSplit{
		Method:    method,
		Amount:    amount,
		Status:    domain.SplitStatusPending,
		CreatedAt: time.Now(),
	})
	return l.Remaining(), nil
}

// RemoveSplit removes an unauthorized split by position. Splits already
// confirmed by a gateway are locked.
func (l *Ledger) RemoveSplit(index int) error {
	if index < 0 || index >= len(l.checkout.Splits) {
		return ErrSplitNotFound
	}
	if l.checkout.Splits[index].Status == domain.SplitStatusAuthorized {
		return domain.ErrSplitLocked
	}
	l.checkout.Splits = append(l.checkout.Splits[:index], l.checkout.Splits[index+1:]...)
	return nil
}

// DiscardUnauthorized drops every split a gateway has not confirmed.
// Used on retreat from the payment step so the ledger stays consistent.
func (l *Ledger) DiscardUnauthorized() {
	kept := l.checkout.Splits[:0]
	for _, s := range l.checkout.Splits {
		if s.Status == domain.SplitStatusAuthorized {
			kept = append(kept, s)
		}
	}
	l.checkout.Splits = kept
}

// HasFailed reports whether any split failed, which blocks settlement
// from resolving.
func (l *Ledger) HasFailed() bool {
	for _, s := range l.checkout.Splits {
		if s.Status == domain.SplitStatusFailed {
			return true
		}
	}
	return false
}
