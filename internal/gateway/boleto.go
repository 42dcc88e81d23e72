package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type BoletoClient struct {
	client *http.Client
	cfg    Config
}

func NewBoletoClient(cfg Config) *BoletoClient {
	return &BoletoClient{
		client: newHTTPClient("boleto", cfg),
		cfg:    cfg,
	}
}

type boletoRequest struct {
	TenantID   string  `json:"tenant_id"`
	CheckoutID string  `json:"checkout_id"`
	Amount     float64 `json:"amount"`
	PayerName  string  `json:"payer_name"`
	PayerEmail string  `json:"payer_email"`
	PayerCPF   string  `json:"payer_cpf"`
}

type boletoResponse struct {
	BoletoURL string `json:"boleto_url"`
}

func (b *BoletoClient) Generate(ctx context.Context, checkoutID string, amount domain.Cents, buyer settlement.Buyer) (*settlement.BoletoGeneration, error) {
	req := boletoRequest{
		TenantID:   b.cfg.TenantID,
		CheckoutID: checkoutID,
		Amount:     amount.Float(),
		PayerName:  buyer.Name,
		PayerEmail: buyer.Email,
		PayerCPF:   buyer.Document,
	}

	headers := map[string]string{idempotencyHeader: idempotencyKey("boleto", checkoutID)}

	var resp boletoResponse
	if err := postJSON(ctx, b.client, b.cfg.PaymentsBaseURL+"/v1/boleto", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("boleto generation: %w", err)
	}

	return &settlement.BoletoGeneration{URL: resp.BoletoURL}, nil
}
