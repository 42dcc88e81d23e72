package domain

import "time"

type PaymentMethod string

const (
	MethodWallet     PaymentMethod = "wallet"
	MethodPix        PaymentMethod = "pix"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodBoleto     PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodWallet, MethodPix, MethodCreditCard, MethodBoleto:
		return true
	}
	return false
}

type SplitStatus string

const (
	SplitStatusPending    SplitStatus = "pending"
	SplitStatusAuthorized SplitStatus = "authorized"
	SplitStatusFailed     SplitStatus = "failed"
)

// PaymentSplit is one payment-method allocation covering part of the
// checkout total. Splits settle in the order they were added.
type PaymentSplit struct {
	Method        PaymentMethod `json:"method"`
	Amount        Cents         `json:"amount"`
	Status        SplitStatus   `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PixArtifact is generated at most once per checkout.
type PixArtifact struct {
	QRImage       string    `json:"qr_image"`
	CopyPasteCode string    `json:"copy_paste_code"`
	Placeholder   bool      `json:"placeholder,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

type BoletoArtifact struct {
	URL         string    `json:"url"`
	Placeholder bool      `json:"placeholder,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
