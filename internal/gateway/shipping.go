package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/shipping"
)

var errNotFound = errors.New("not found")

type ShippingClient struct {
	client *http.Client
	cfg    Config
}

func NewShippingClient(cfg Config) *ShippingClient {
	return &ShippingClient{
		client: newHTTPClient("shipping", cfg),
		cfg:    cfg,
	}
}

type quoteRequest struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Parcels     []domain.Parcel `json:"parcels"`
}

type quoteDTO struct {
	ID           string  `json:"id"`
	Carrier      string  `json:"carrier"`
	Service      string  `json:"service"`
	Price        float64 `json:"price"`
	DeliveryDays int     `json:"delivery_days"`
}

type quoteResponse struct {
	Quotes []quoteDTO `json:"quotes"`
}

func (s *ShippingClient) Quote(ctx context.Context, originPostalCode, destinationPostalCode string, parcels []domain.Parcel) ([]domain.ShippingQuote, error) {
	req := quoteRequest{
		Origin:      originPostalCode,
		Destination: destinationPostalCode,
		Parcels:     parcels,
	}

	var resp quoteResponse
	if err := postJSON(ctx, s.client, s.cfg.ShippingBaseURL+"/v1/quotes", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("shipping quote: %w", err)
	}

	quotes := make([]domain.ShippingQuote, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		quotes = append(quotes, domain.ShippingQuote{
			ID:           q.ID,
			Carrier:      q.Carrier,
			Service:      q.Service,
			Price:        domain.CentsFromFloat(q.Price),
			DeliveryDays: q.DeliveryDays,
		})
	}
	return quotes, nil
}

type addressDTO struct {
	Street     string `json:"logradouro"`
	District   string `json:"bairro"`
	City       string `json:"localidade"`
	State      string `json:"uf"`
	PostalCode string `json:"cep"`
}

// AddressClient resolves a CEP to address fields.
type AddressClient struct {
	client *http.Client
	cfg    Config
}

func NewAddressClient(cfg Config) *AddressClient {
	return &AddressClient{
		client: newHTTPClient("address", cfg),
		cfg:    cfg,
	}
}

func (a *AddressClient) Lookup(ctx context.Context, postalCode string) (*domain.Address, error) {
	endpoint := fmt.Sprintf("%s/v1/cep/%s", a.cfg.ShippingBaseURL, url.PathEscape(postalCode))

	var dto addressDTO
	if err := getJSON(ctx, a.client, endpoint, &dto); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, shipping.ErrAddressNotFound
		}
		return nil, fmt.Errorf("address lookup: %w", err)
	}

	return &domain.Address{
		Street:     dto.Street,
		District:   dto.District,
		City:       dto.City,
		State:      dto.State,
		PostalCode: dto.PostalCode,
	}, nil
}
