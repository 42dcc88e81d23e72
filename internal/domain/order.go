package domain

import "time"

type PaymentOutcome string

const (
	PaymentOutcomePaid        PaymentOutcome = "paid"
	PaymentOutcomePending     PaymentOutcome = "pending"
	PaymentOutcomeUnderReview PaymentOutcome = "under_review"
)

// Order is the immutable snapshot produced by finalization. It is
// created exactly once per checkout and never mutated afterwards.
type Order struct {
	ID             string             `json:"id"`
	CheckoutID     string             `json:"checkout_id"`
	UserID         string             `json:"user_id"`
	Items          []CartSnapshotItem `json:"items"`
	Customer       Customer           `json:"customer"`
	ShippingMethod string             `json:"shipping_method"`
	AcceptedOffers []Offer            `json:"accepted_offers"`
	Splits         []PaymentSplit     `json:"splits"`
	Subtotal       Cents              `json:"subtotal"`
	ShippingCost   Cents              `json:"shipping_cost"`
	Discount       Cents              `json:"discount"`
	OffersTotal    Cents              `json:"offers_total"`
	Total          Cents              `json:"total"`
	Currency       string             `json:"currency"`
	Outcome        PaymentOutcome     `json:"payment_outcome"`
	CreatedAt      time.Time          `json:"created_at"`
}
