package domain

import "errors"

// Validation and allocation errors are resolved by the component that
// detects them; gateway errors propagate to the settlement orchestrator.
var (
	ErrInvalidTransition   = errors.New("invalid funnel transition")
	ErrAllocationOverflow  = errors.New("split exceeds remaining total")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrSplitLocked         = errors.New("authorized split cannot be removed")
	ErrGatewayUnavailable  = errors.New("gateway unavailable")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrFraudRejected       = errors.New("transaction not authorized")
)
