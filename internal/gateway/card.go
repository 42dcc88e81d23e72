package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type CardClient struct {
	client *http.Client
	cfg    Config
}

func NewCardClient(cfg Config) *CardClient {
	return &CardClient{
		client: newHTTPClient("card", cfg),
		cfg:    cfg,
	}
}

type cardRequest struct {
	TenantID    string  `json:"tenant_id"`
	CheckoutID  string  `json:"checkout_id"`
	Amount      float64 `json:"amount"`
	CardNumber  string  `json:"card_number"`
	HolderName  string  `json:"holder_name"`
	ExpiryMonth int     `json:"expiry_month"`
	ExpiryYear  int     `json:"expiry_year"`
	CVV         string  `json:"cvv"`
	PayerName   string  `json:"payer_name"`
	PayerEmail  string  `json:"payer_email"`
	PayerCPF    string  `json:"payer_cpf"`
}

type cardResponse struct {
	Authorized    bool   `json:"authorized"`
	TransactionID string `json:"transaction_id"`
	DeclineReason string `json:"decline_reason"`
}

func (c *CardClient) Authorize(ctx context.Context, checkoutID string, amount domain.Cents, card settlement.CardDetails, buyer settlement.Buyer) (*settlement.CardAuthorization, error) {
	req := cardRequest{
		TenantID:    c.cfg.TenantID,
		CheckoutID:  checkoutID,
		Amount:      amount.Float(),
		CardNumber:  card.Number,
		HolderName:  card.HolderName,
		ExpiryMonth: card.ExpiryMonth,
		ExpiryYear:  card.ExpiryYear,
		CVV:         card.CVV,
		PayerName:   buyer.Name,
		PayerEmail:  buyer.Email,
		PayerCPF:    buyer.Document,
	}

	// Authorization is not naturally idempotent; the key guards the
	// retried-request case on the gateway side.
	headers := map[string]string{idempotencyHeader: idempotencyKey("card", checkoutID)}

	var resp cardResponse
	if err := postJSON(ctx, c.client, c.cfg.PaymentsBaseURL+"/v1/card/authorize", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("card authorization: %w", err)
	}

	return &settlement.CardAuthorization{
		Authorized:    resp.Authorized,
		TransactionID: resp.TransactionID,
		DeclineReason: resp.DeclineReason,
	}, nil
}
