package domain

// ShippingQuote is one carrier option for a destination postal code.
type ShippingQuote struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	Price        Cents  `json:"price"`
	DeliveryDays int    `json:"delivery_days"`
}

// Parcel describes one box for the quote request.
type Parcel struct {
	WeightGrams int `json:"weight_grams"`
	LengthCM    int `json:"length_cm"`
	WidthCM     int `json:"width_cm"`
	HeightCM    int `json:"height_cm"`
}

// DefaultQuotes is the fallback set used when the quote provider is
// unreachable. Never empty: pickup at zero plus one paid option.
func DefaultQuotes() []ShippingQuote {
	return []ShippingQuote{
		{ID: "fallback-pickup", Carrier: "Retirada", Service: "Pickup", Price: 0, DeliveryDays: 0},
		{ID: "fallback-standard", Carrier: "Correios", Service: "PAC", Price: 2500, DeliveryDays: 9},
	}
}

// DigitalDeliveryQuote is auto-selected for carts with only digital items.
func DigitalDeliveryQuote() ShippingQuote {
	return ShippingQuote{ID: "digital", Carrier: "Digital", Service: "Digital delivery", Price: 0, DeliveryDays: 0}
}
