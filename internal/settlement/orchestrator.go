// Package settlement resolves the payment splits of a checkout against
// their gateway collaborators.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/pkg/metrics"
)

var (
	ErrSettlementInFlight   = errors.New("settlement already in progress for this checkout")
	ErrIncompleteAllocation = errors.New("splits do not cover the checkout total")
)

type Orchestrator struct {
	pix    PixGenerator
	boleto BoletoGenerator
	card   CardAuthorizer
	wallet WalletLedger
	fraud  AntifraudEvaluator
	m      *metrics.SettlementMetrics

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(pix PixGenerator, boleto BoletoGenerator, card CardAuthorizer, wallet WalletLedger, fraud AntifraudEvaluator, m *metrics.SettlementMetrics) *Orchestrator {
	return &Orchestrator{
		pix:      pix,
		boleto:   boleto,
		card:     card,
		wallet:   wallet,
		fraud:    fraud,
		m:        m,
		inFlight: make(map[string]struct{}),
	}
}

// Settle runs one settlement round: every pending split is dispatched
// to its gateway in the order it was added, stopping at the first
// failure. On success the checkout moves to PAYMENT_RESOLVED (or
// AWAITING_REVIEW when antifraud asked for manual review).
//
// A second Settle call for the same checkout while one is in flight is
// rejected; this is the duplicate-submit guard for retried requests.
func (o *Orchestrator) Settle(ctx context.Context, checkout *domain.Checkout, card *CardDetails) error {
	if err := o.begin(checkout.ID); err != nil {
		return err
	}
	defer o.end(checkout.ID)

	if checkout.Status.IsTerminal() {
		return fmt.Errorf("%w: checkout is %s", domain.ErrInvalidTransition, checkout.Status)
	}

	led := ledger.New(checkout)
	if !led.IsComplete() {
		return fmt.Errorf("%w: remaining %s", ErrIncompleteAllocation, led.Remaining())
	}

	// The generation fences results of calls that resolve after a
	// retreat or cancel: stale outcomes are discarded, never applied.
	generation := checkout.Generation

	if err := o.gateAntifraud(ctx, checkout, generation); err != nil {
		return err
	}
	if checkout.Generation != generation {
		return nil
	}

	for i := range checkout.Splits {
		split := &checkout.Splits[i]
		if split.Status != domain.SplitStatusPending {
			continue
		}

		var err error
		switch split.Method {
		case domain.MethodWallet:
			err = o.settleWallet(ctx, checkout, split, generation)
		case domain.MethodPix:
			err = o.settlePix(ctx, checkout, split, generation)
		case domain.MethodBoleto:
			err = o.settleBoleto(ctx, checkout, split, generation)
		case domain.MethodCreditCard:
			err = o.settleCard(ctx, checkout, split, card, generation)
		default:
			err = fmt.Errorf("unknown payment method %q", split.Method)
		}
		if err != nil {
			// Splits are dependent: never authorize split N+1 after
			// split N failed.
			return err
		}
		if checkout.Generation != generation {
			log.Printf("stale settlement result discarded checkout_id = %v", checkout.ID)
			return nil
		}
	}

	if led.HasFailed() || checkout.Generation != generation {
		return nil
	}

	if checkout.Antifraud != nil && checkout.Antifraud.Status == domain.AntifraudPending {
		checkout.Status = domain.CheckoutStatusAwaitingReview
	} else {
		checkout.Status = domain.CheckoutStatusPaymentResolved
	}
	checkout.UpdatedAt = time.Now()
	return nil
}

// gateAntifraud submits the transaction for risk scoring before any
// credit_card or pix split reaches its gateway. A technical error from
// the evaluator fails open to manual review: a false rejection costs
// more than a manual check.
func (o *Orchestrator) gateAntifraud(ctx context.Context, checkout *domain.Checkout, generation int) error {
	needed := false
	for _, s := range checkout.Splits {
		if s.Status != domain.SplitStatusPending {
			continue
		}
		if s.Method == domain.MethodCreditCard || s.Method == domain.MethodPix {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	started := time.Now()
	outcome, err := o.fraud.Evaluate(ctx, AntifraudInput{
		CheckoutID:      checkout.ID,
		Items:           checkout.Snapshot.Items,
		Customer:        checkout.Customer,
		ShippingAddress: checkout.Customer.Address,
		Amount:          checkout.Total(),
	})
	o.observe("antifraud", started)

	if checkout.Generation != generation {
		log.Printf("stale antifraud result discarded checkout_id = %v", checkout.ID)
		return nil
	}

	if err != nil {
		log.Printf("antifraud evaluator error, deferring to manual review checkout_id = %v: %v", checkout.ID, err)
		outcome = &AntifraudOutcome{Status: domain.AntifraudPending}
	}

	checkout.Antifraud = &domain.AntifraudResult{
		Status:      outcome.Status,
		Score:       outcome.Score,
		EvaluatedAt: time.Now(),
	}

	if outcome.Status == domain.AntifraudRejected {
		for i := range checkout.Splits {
			if checkout.Splits[i].Status != domain.SplitStatusAuthorized {
				checkout.Splits[i].Status = domain.SplitStatusFailed
				checkout.Splits[i].FailureReason = "not authorized"
				o.count(checkout.Splits[i].Method, "fraud_rejected")
			}
		}
		// The buyer restarts the payment step with new input; the raw
		// score never surfaces.
		return domain.ErrFraudRejected
	}
	return nil
}

// settleWallet re-reads the balance immediately before transferring:
// the wallet is an external, authoritative resource and is never acted
// on from a cached value. Wallet failures are terminal for the whole
// settlement.
func (o *Orchestrator) settleWallet(ctx context.Context, checkout *domain.Checkout, split *domain.PaymentSplit, generation int) error {
	started := time.Now()
	balance, err := o.wallet.Balance(ctx, checkout.UserID)
	o.observe("wallet", started)
	if err != nil {
		return fmt.Errorf("%w: wallet balance: %v", domain.ErrGatewayUnavailable, err)
	}
	if checkout.Generation != generation {
		log.Printf("stale wallet balance discarded checkout_id = %v", checkout.ID)
		return nil
	}
	if balance < split.Amount {
		split.Status = domain.SplitStatusFailed
		split.FailureReason = "insufficient balance"
		checkout.Status = domain.CheckoutStatusFailedPayment
		o.count(split.Method, "insufficient_balance")
		return fmt.Errorf("%w: available %s", domain.ErrInsufficientBalance, balance)
	}

	started = time.Now()
	result, err := o.wallet.Transfer(ctx, checkout.UserID, split.Amount, checkout.ID)
	o.observe("wallet", started)
	if err != nil {
		return fmt.Errorf("%w: wallet transfer: %v", domain.ErrGatewayUnavailable, err)
	}
	if checkout.Generation != generation {
		log.Printf("stale wallet transfer discarded checkout_id = %v tx = %v", checkout.ID, result.TransactionID)
		return nil
	}
	if !result.Success {
		split.Status = domain.SplitStatusFailed
		split.FailureReason = result.Reason
		checkout.Status = domain.CheckoutStatusFailedPayment
		o.count(split.Method, "declined")
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, result.Reason)
	}

	split.Status = domain.SplitStatusAuthorized
	split.TransactionID = result.TransactionID
	o.count(split.Method, "authorized")
	return nil
}

// settlePix reuses the existing artifact when one was already generated
// for this checkout; regeneration is forbidden. Generator failure falls
// back to an offline-representable placeholder instead of failing the
// checkout, and resolution is deferred to the payment webhook.
func (o *Orchestrator) settlePix(ctx context.Context, checkout *domain.Checkout, split *domain.PaymentSplit, generation int) error {
	if checkout.Pix != nil {
		o.count(split.Method, "reused")
		return nil
	}

	started := time.Now()
	generated, err := o.pix.Generate(ctx, checkout.ID, split.Amount, buyerOf(checkout))
	o.observe("pix", started)
	if checkout.Generation != generation {
		log.Printf("stale pix generation discarded checkout_id = %v", checkout.ID)
		return nil
	}
	if err != nil {
		log.Printf("pix generator unavailable, using placeholder checkout_id = %v: %v", checkout.ID, err)
		checkout.Pix = &domain.PixArtifact{
			CopyPasteCode: fmt.Sprintf("PIX-OFFLINE-%s", checkout.ID),
			Placeholder:   true,
			GeneratedAt:   time.Now(),
		}
		o.count(split.Method, "placeholder")
		return nil
	}

	checkout.Pix = &domain.PixArtifact{
		QRImage:       generated.QRImage,
		CopyPasteCode: generated.CopyPasteCode,
		GeneratedAt:   time.Now(),
	}
	o.count(split.Method, "generated")
	return nil
}

// settleBoleto mirrors the pix policy; boleto resolution is always
// pending at split creation, payment is asynchronous by nature.
func (o *Orchestrator) settleBoleto(ctx context.Context, checkout *domain.Checkout, split *domain.PaymentSplit, generation int) error {
	if checkout.Boleto != nil {
		o.count(split.Method, "reused")
		return nil
	}

	started := time.Now()
	generated, err := o.boleto.Generate(ctx, checkout.ID, split.Amount, buyerOf(checkout))
	o.observe("boleto", started)
	if checkout.Generation != generation {
		log.Printf("stale boleto generation discarded checkout_id = %v", checkout.ID)
		return nil
	}
	if err != nil {
		log.Printf("boleto generator unavailable, using placeholder checkout_id = %v: %v", checkout.ID, err)
		checkout.Boleto = &domain.BoletoArtifact{
			Placeholder: true,
			GeneratedAt: time.Now(),
		}
		o.count(split.Method, "placeholder")
		return nil
	}

	checkout.Boleto = &domain.BoletoArtifact{
		URL:         generated.URL,
		GeneratedAt: time.Now(),
	}
	o.count(split.Method, "generated")
	return nil
}

func (o *Orchestrator) settleCard(ctx context.Context, checkout *domain.Checkout, split *domain.PaymentSplit, card *CardDetails, generation int) error {
	if card == nil {
		return fmt.Errorf("%w: card details required", ErrInvalidCard)
	}
	if err := card.Validate(time.Now()); err != nil {
		return err
	}

	started := time.Now()
	auth, err := o.card.Authorize(ctx, checkout.ID, split.Amount, *card, buyerOf(checkout))
	o.observe("card", started)
	if err != nil {
		return fmt.Errorf("%w: card authorizer: %v", domain.ErrGatewayUnavailable, err)
	}
	if checkout.Generation != generation {
		log.Printf("stale card authorization discarded checkout_id = %v tx = %v", checkout.ID, auth.TransactionID)
		return nil
	}

	if !auth.Authorized {
		split.Status = domain.SplitStatusFailed
		split.FailureReason = auth.DeclineReason
		o.count(split.Method, "declined")
		// Declines surface the gateway's reason and are never retried
		// automatically; the checkout stays on the payment step.
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, auth.DeclineReason)
	}

	split.Status = domain.SplitStatusAuthorized
	split.TransactionID = auth.TransactionID
	o.count(split.Method, "authorized")
	return nil
}

func (o *Orchestrator) begin(checkoutID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[checkoutID]; busy {
		return ErrSettlementInFlight
	}
	o.inFlight[checkoutID] = struct{}{}
	return nil
}

func (o *Orchestrator) end(checkoutID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, checkoutID)
}

func (o *Orchestrator) count(method domain.PaymentMethod, outcome string) {
	if o.m == nil {
		return
	}
	o.m.SplitOutcomes.WithLabelValues(string(method), outcome).Inc()
}

func (o *Orchestrator) observe(collaborator string, started time.Time) {
	if o.m == nil {
		return
	}
	o.m.GatewayLatency.WithLabelValues(collaborator).Observe(float64(time.Since(started).Milliseconds()))
}

func buyerOf(checkout *domain.Checkout) Buyer {
	return Buyer{
		Name:     checkout.Customer.Name,
		Email:    checkout.Customer.Email,
		Document: checkout.Customer.Document,
		Phone:    checkout.Customer.Phone,
	}
}
