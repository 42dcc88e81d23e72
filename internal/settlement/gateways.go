package settlement

import (
	"context"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

// Buyer carries the identification fields gateways need.
type Buyer struct {
	Name     string
	Email    string
	Document string
	Phone    string
}

type PixGeneration struct {
	QRImage       string
	CopyPasteCode string
}

type BoletoGeneration struct {
	URL string
}

type CardAuthorization struct {
	Authorized    bool
	TransactionID string
	DeclineReason string
}

type TransferResult struct {
	Success       bool
	TransactionID string
	Reason        string
}

type AntifraudInput struct {
	CheckoutID      string
	Items           []domain.CartSnapshotItem
	Customer        domain.Customer
	ShippingAddress *domain.Address
	PaymentToken    string
	Amount          domain.Cents
}

type AntifraudOutcome struct {
	Status domain.AntifraudStatus
	Score  float64
}

// Gateway collaborators. Each settles one payment method; all calls are
// suspension points and must be guarded against duplicate side effects.
type (
	PixGenerator interface {
		Generate(ctx context.Context, checkoutID string, amount domain.Cents, buyer Buyer) (*PixGeneration, error)
	}

	BoletoGenerator interface {
		Generate(ctx context.Context, checkoutID string, amount domain.Cents, buyer Buyer) (*BoletoGeneration, error)
	}

	CardAuthorizer interface {
		Authorize(ctx context.Context, checkoutID string, amount domain.Cents, card CardDetails, buyer Buyer) (*CardAuthorization, error)
	}

	WalletLedger interface {
		Balance(ctx context.Context, customerID string) (domain.Cents, error)
		// Transfer moves funds from the buyer to the tenant. The
		// reference (checkout id) guards against duplicate debits on
		// retried requests.
		Transfer(ctx context.Context, fromCustomer string, amount domain.Cents, reference string) (*TransferResult, error)
		// Refund reverses a transfer, best effort, when finalization
		// fails after the wallet split was already authorized.
		Refund(ctx context.Context, customerID, transactionID string, amount domain.Cents) error
	}

	AntifraudEvaluator interface {
		Evaluate(ctx context.Context, in AntifraudInput) (*AntifraudOutcome, error)
	}
)
