package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cart"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/ledger"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/service"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/shipping"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps the sentinels of the inner packages to HTTP
// statuses. Unknown errors stay a generic 500; their detail never
// reaches the buyer.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrCheckoutNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, repository.ErrCouponNotFound),
		errors.Is(err, ledger.ErrSplitNotFound),
		errors.Is(err, shipping.ErrAddressNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSplitLocked),
		errors.Is(err, cart.ErrCartClosed),
		errors.Is(err, cart.ErrCartEmpty),
		errors.Is(err, service.ErrOfferNotAvailable),
		errors.Is(err, service.ErrOfferAlreadyAccepted):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, settlement.ErrSettlementInFlight):
		respondError(w, http.StatusConflict, "settlement_in_flight", err.Error())
	case errors.Is(err, domain.ErrAllocationOverflow),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, settlement.ErrIncompleteAllocation),
		errors.Is(err, service.ErrCouponInactive),
		errors.Is(err, service.ErrNoCouponApplied):
		respondError(w, http.StatusUnprocessableEntity, "unprocessable", err.Error())
	case errors.Is(err, domain.ErrFraudRejected):
		// The risk verdict and score stay internal.
		respondError(w, http.StatusUnprocessableEntity, "payment_rejected", "payment was not authorized")
	case errors.Is(err, domain.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, settlement.ErrInvalidCard):
		respondError(w, http.StatusBadRequest, "invalid_card", err.Error())
	case errors.Is(err, domain.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable", "a payment collaborator is unavailable")
	default:
		log.Printf("unhandled error request_id = %v: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
