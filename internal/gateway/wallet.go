package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type WalletClient struct {
	client *http.Client
	cfg    Config
}

func NewWalletClient(cfg Config) *WalletClient {
	return &WalletClient{
		client: newHTTPClient("wallet", cfg),
		cfg:    cfg,
	}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

func (w *WalletClient) Balance(ctx context.Context, customerID string) (domain.Cents, error) {
	var resp balanceResponse
	endpoint := fmt.Sprintf("%s/v1/balance/%s", w.cfg.WalletBaseURL, url.PathEscape(customerID))
	if err := getJSON(ctx, w.client, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return domain.CentsFromFloat(resp.Balance), nil
}

type transferRequest struct {
	FromCustomer string  `json:"from_customer"`
	ToTenant     string  `json:"to_tenant"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
}

type transferResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

func (w *WalletClient) Transfer(ctx context.Context, fromCustomer string, amount domain.Cents, reference string) (*settlement.TransferResult, error) {
	req := transferRequest{
		FromCustomer: fromCustomer,
		ToTenant:     w.cfg.TenantID,
		Amount:       amount.Float(),
		Reference:    reference,
	}

	headers := map[string]string{idempotencyHeader: idempotencyKey("wallet-transfer", reference)}

	var resp transferResponse
	if err := postJSON(ctx, w.client, w.cfg.WalletBaseURL+"/v1/transfer", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("wallet transfer: %w", err)
	}

	return &settlement.TransferResult{
		Success:       resp.Success,
		TransactionID: resp.TransactionID,
		Reason:        resp.Reason,
	}, nil
}

type refundRequest struct {
	CustomerID    string  `json:"customer_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

func (w *WalletClient) Refund(ctx context.Context, customerID, transactionID string, amount domain.Cents) error {
	req := refundRequest{
		CustomerID:    customerID,
		TransactionID: transactionID,
		Amount:        amount.Float(),
	}
	if err := postJSON(ctx, w.client, w.cfg.WalletBaseURL+"/v1/refund", nil, req, nil); err != nil {
		return fmt.Errorf("wallet refund: %w", err)
	}
	return nil
}
