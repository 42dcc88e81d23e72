package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
)

type AntifraudClient struct {
	client *http.Client
	cfg    Config
}

func NewAntifraudClient(cfg Config) *AntifraudClient {
	return &AntifraudClient{
		client: newHTTPClient("antifraud", cfg),
		cfg:    cfg,
	}
}

type antifraudItem struct {
	ProductID string  `json:"product_id"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type antifraudRequest struct {
	TenantID        string          `json:"tenant_id"`
	CheckoutID      string          `json:"checkout_id"`
	Amount          float64         `json:"amount"`
	Items           []antifraudItem `json:"items"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerCPF     string          `json:"customer_cpf"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	PaymentToken    string          `json:"payment_token,omitempty"`
}

type antifraudResponse struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

func (a *AntifraudClient) Evaluate(ctx context.Context, in settlement.AntifraudInput) (*settlement.AntifraudOutcome, error) {
	items := make([]antifraudItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, antifraudItem{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice.Float(),
			Quantity:  item.Quantity,
		})
	}

	req := antifraudRequest{
		TenantID:        a.cfg.TenantID,
		CheckoutID:      in.CheckoutID,
		Amount:          in.Amount.Float(),
		Items:           items,
		CustomerName:    in.Customer.Name,
		CustomerEmail:   in.Customer.Email,
		CustomerCPF:     in.Customer.Document,
		CustomerPhone:   in.Customer.Phone,
		ShippingAddress: in.ShippingAddress,
		PaymentToken:    in.PaymentToken,
	}

	var resp antifraudResponse
	if err := postJSON(ctx, a.client, a.cfg.RiskBaseURL+"/v1/evaluate", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("antifraud evaluation: %w", err)
	}

	switch domain.AntifraudStatus(resp.Status) {
	case domain.AntifraudApproved, domain.AntifraudPending, domain.AntifraudRejected:
		return &settlement.AntifraudOutcome{Status: domain.AntifraudStatus(resp.Status), Score: resp.Score}, nil
	}
	return nil, fmt.Errorf("antifraud returned unknown status %q", resp.Status)
}
