package domain

type OfferType string

const (
	// Bumps are presented before final total computation.
	OfferTypeBump OfferType = "bump"
	// Upsells are presented after settlement succeeds, before completion.
	OfferTypeUpsell OfferType = "upsell"
)

type Offer struct {
	ID          string    `json:"id"`
	Type        OfferType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       Cents     `json:"price"`
	ProductID   string    `json:"product_id"`
}
