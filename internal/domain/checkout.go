package domain

import "time"

type FunnelStep string

const (
	StepIdentification FunnelStep = "identification"
	StepShipping       FunnelStep = "shipping"
	StepPayment        FunnelStep = "payment"
	StepUpsell         FunnelStep = "upsell"
	StepCompleted      FunnelStep = "completed"
)

var stepOrder = map[FunnelStep]int{
	StepIdentification: 0,
	StepShipping:       1,
	StepPayment:        2,
	StepUpsell:         3,
	StepCompleted:      4,
}

// StepIndex returns the position of a step in the funnel, or -1 for an
// unknown step.
func StepIndex(s FunnelStep) int {
	if i, ok := stepOrder[s]; ok {
		return i
	}
	return -1
}

type CheckoutStatus string

const (
	CheckoutStatusActive          CheckoutStatus = "ACTIVE"
	CheckoutStatusPaymentResolved CheckoutStatus = "PAYMENT_RESOLVED"
	CheckoutStatusAwaitingReview  CheckoutStatus = "AWAITING_REVIEW"
	CheckoutStatusCompleted       CheckoutStatus = "COMPLETED"
	CheckoutStatusAbandoned       CheckoutStatus = "ABANDONED"
	CheckoutStatusFailedPayment   CheckoutStatus = "FAILED_PAYMENT"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusAbandoned || s == CheckoutStatusFailedPayment
}

func (s CheckoutStatus) String() string {
	return string(s)
}

var allowedStatusTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusActive: {
		CheckoutStatusPaymentResolved,
		CheckoutStatusAwaitingReview,
		CheckoutStatusFailedPayment,
		CheckoutStatusAbandoned,
	},
	// Retreating from payment clears settlement state, back to ACTIVE.
	CheckoutStatusPaymentResolved: {
		CheckoutStatusCompleted,
		CheckoutStatusActive,
		CheckoutStatusAbandoned,
	},
	CheckoutStatusAwaitingReview: {
		CheckoutStatusCompleted,
		CheckoutStatusActive,
		CheckoutStatusAbandoned,
	},
	CheckoutStatusCompleted:     {},
	CheckoutStatusAbandoned:     {CheckoutStatusAbandoned}, // cancel is idempotent
	CheckoutStatusFailedPayment: {CheckoutStatusAbandoned},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, s := range allowedStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AntifraudStatus string

const (
	AntifraudApproved AntifraudStatus = "approved"
	AntifraudPending  AntifraudStatus = "pending"
	AntifraudRejected AntifraudStatus = "rejected"
)

type AntifraudResult struct {
	Status      AntifraudStatus `json:"status"`
	Score       float64         `json:"score"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// StepChange is one immutable funnel history entry.
type StepChange struct {
	From FunnelStep `json:"from"`
	To   FunnelStep `json:"to"`
	At   time.Time  `json:"at"`
}

// Checkout is the mutable, in-progress purchase attempt tied to one cart.
type Checkout struct {
	ID            string           `json:"id"`
	CartID        string           `json:"cart_id"`
	UserID        string           `json:"user_id"` // empty for guest checkouts
	Snapshot      CartSnapshot     `json:"snapshot"`
	Customer      Customer         `json:"customer"`
	Step          FunnelStep       `json:"step"`
	Status        CheckoutStatus   `json:"status"`
	StepHistory   []StepChange     `json:"step_history"`
	SelectedQuote *ShippingQuote   `json:"selected_quote,omitempty"`
	Coupon        *Coupon          `json:"coupon,omitempty"`
	AcceptedOffers []Offer         `json:"accepted_offers"`
	Splits        []PaymentSplit   `json:"splits"`
	Antifraud     *AntifraudResult `json:"antifraud,omitempty"`
	Pix           *PixArtifact     `json:"pix,omitempty"`
	Boleto        *BoletoArtifact  `json:"boleto,omitempty"`

	// Generation fences in-flight settlement results: retreat and cancel
	// bump it, and a stale gateway outcome is discarded on mismatch.
	Generation int `json:"generation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Checkout) Subtotal() Cents {
	return c.Snapshot.Subtotal
}

func (c *Checkout) ShippingCost() Cents {
	if c.SelectedQuote == nil {
		return 0
	}
	return c.SelectedQuote.Price
}

func (c *Checkout) Discount() Cents {
	if c.Coupon == nil {
		return 0
	}
	return c.Coupon.Discount(c.Subtotal())
}

func (c *Checkout) OffersTotal() Cents {
	var sum Cents
	for _, o := range c.AcceptedOffers {
		sum += o.Price
	}
	return sum
}

// Total = subtotal + shipping - discount + accepted offers. Discount is
// capped at subtotal, so the total never goes negative.
func (c *Checkout) Total() Cents {
	return c.Subtotal() + c.ShippingCost() - c.Discount() + c.OffersTotal()
}

func (c *Checkout) AllocatedTotal() Cents {
	var sum Cents
	for _, s := range c.Splits {
		sum += s.Amount
	}
	return sum
}

func (c *Checkout) HasAcceptedOffer(id string) bool {
	for _, o := range c.AcceptedOffers {
		if o.ID == id {
			return true
		}
	}
	return false
}
