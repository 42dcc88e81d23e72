package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/service"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type CheckoutHandler struct {
	svc     *service.Service
	timeout time.Duration
}

func NewCheckoutHandler(svc *service.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, timeout: timeout}
}

type StartCheckoutRequestDTO struct {
	CartID string `json:"cart_id"`
	UserID string `json:"user_id"`
}

type StepRequestDTO struct {
	To string `json:"to"`
}

type CouponRequestDTO struct {
	Code string `json:"code"`
}

type AddSplitRequestDTO struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type AddSplitResponseDTO struct {
	Checkout  *domain.Checkout `json:"checkout"`
	Remaining string           `json:"remaining"`
}

type SettleRequestDTO struct {
	Card *settlement.CardDetails `json:"card,omitempty"`
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req StartCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CartID == "" {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cart_id is required")
		return
	}

	checkout, err := h.svc.Start(ctx, req.CartID, req.UserID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, checkout)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	checkout, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req StepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkout, err := h.svc.Advance(ctx, chi.URLParam(r, "id"), domain.FunnelStep(req.To))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req StepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkout, err := h.svc.Retreat(ctx, chi.URLParam(r, "id"), domain.FunnelStep(req.To))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	checkout, err := h.svc.Cancel(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkout, err := h.svc.UpdateCustomer(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) ShippingQuotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	quotes, err := h.svc.Quotes(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("cep"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

func (h *CheckoutHandler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req domain.ShippingQuote
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkout, err := h.svc.SelectQuote(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_coupon", "code is required")
		return
	}

	checkout, err := h.svc.ApplyCoupon(ctx, chi.URLParam(r, "id"), req.Code)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	checkout, err := h.svc.RemoveCoupon(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	checkout, err := h.svc.AcceptOffer(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "offer_id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) AddSplit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req AddSplitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount", err.Error())
		return
	}

	checkout, remaining, err := h.svc.AddSplit(ctx, chi.URLParam(r, "id"), domain.PaymentMethod(req.Method), amount)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, AddSplitResponseDTO{
		Checkout:  checkout,
		Remaining: remaining.String(),
	})
}

func (h *CheckoutHandler) RemoveSplit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be a non-negative integer")
		return
	}

	checkout, err := h.svc.RemoveSplit(ctx, chi.URLParam(r, "id"), index)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) Settle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req SettleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkout, err := h.svc.Settle(ctx, chi.URLParam(r, "id"), req.Card)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkout)
}

func (h *CheckoutHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	o, err := h.svc.Finalize(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	o, err := h.svc.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) LookupAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	address, err := h.svc.LookupAddress(ctx, chi.URLParam(r, "cep"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, address)
}

func (h *CheckoutHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}
