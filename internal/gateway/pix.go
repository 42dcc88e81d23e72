package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type PixClient struct {
	client *http.Client
	cfg    Config
}

func NewPixClient(cfg Config) *PixClient {
	return &PixClient{
		client: newHTTPClient("pix", cfg),
		cfg:    cfg,
	}
}

type pixRequest struct {
	TenantID    string  `json:"tenant_id"`
	CheckoutID  string  `json:"checkout_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	PayerName   string  `json:"payer_name"`
	PayerEmail  string  `json:"payer_email"`
	PayerCPF    string  `json:"payer_cpf"`
}

type pixResponse struct {
	QRCodeBase64  string `json:"qr_code_base64"`
	CopyPasteCode string `json:"qr_code"`
}

func (p *PixClient) Generate(ctx context.Context, checkoutID string, amount domain.Cents, buyer settlement.Buyer) (*settlement.PixGeneration, error) {
	req := pixRequest{
		TenantID:    p.cfg.TenantID,
		CheckoutID:  checkoutID,
		Amount:      amount.Float(),
		Description: fmt.Sprintf("Pedido %s", checkoutID),
		PayerName:   buyer.Name,
		PayerEmail:  buyer.Email,
		PayerCPF:    buyer.Document,
	}

	headers := map[string]string{idempotencyHeader: idempotencyKey("pix", checkoutID)}

	var resp pixResponse
	if err := postJSON(ctx, p.client, p.cfg.PaymentsBaseURL+"/v1/pix", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("pix generation: %w", err)
	}

	return &settlement.PixGeneration{
		QRImage:       resp.QRCodeBase64,
		CopyPasteCode: resp.CopyPasteCode,
	}, nil
}
