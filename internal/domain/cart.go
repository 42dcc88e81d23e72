package domain

import "time"

type CartStatus string

const (
	CartStatusOpen      CartStatus = "OPEN"
	CartStatusConverted CartStatus = "CONVERTED"
	CartStatusAbandoned CartStatus = "ABANDONED"
)

type Cart struct {
	ID        string     `bson:"_id,omitempty"`
	UserID    string     `bson:"user_id"`
	Status    CartStatus `bson:"status"`
	Items     []CartItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type CartItem struct {
	ProductID   string `bson:"product_id"`
	VariantID   string `bson:"variant_id,omitempty"`
	ProductName string `bson:"product_name"`
	UnitPrice   Cents  `bson:"unit_price"`
	Quantity    int    `bson:"quantity"`
	Digital     bool   `bson:"digital"`
}

// CartSnapshotItem captures price and quantity at checkout time.
type CartSnapshotItem struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	UnitPrice   Cents  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    Cents  `json:"subtotal"`
	Digital     bool   `json:"digital"`
}

// CartSnapshot is the immutable cart state a checkout is started from.
// Later cart mutations never change an in-flight checkout.
type CartSnapshot struct {
	CartID     string             `json:"cart_id"`
	Items      []CartSnapshotItem `json:"items"`
	Subtotal   Cents              `json:"subtotal"`
	Currency   string             `json:"currency"`
	CapturedAt time.Time          `json:"captured_at"`
}

func (c *Cart) Snapshot(now time.Time) CartSnapshot {
	snapshot := CartSnapshot{
		CartID:     c.ID,
		Items:      make([]CartSnapshotItem, 0, len(c.Items)),
		Currency:   "BRL",
		CapturedAt: now,
	}
	for _, item := range c.Items {
		subtotal := item.UnitPrice * Cents(item.Quantity)
		snapshot.Items = append(snapshot.Items, CartSnapshotItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
			Digital:     item.Digital,
		})
		snapshot.Subtotal += subtotal
	}
	return snapshot
}

// AllDigital reports whether the snapshot needs no physical shipping.
func (s CartSnapshot) AllDigital() bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, item := range s.Items {
		if !item.Digital {
			return false
		}
	}
	return true
}
