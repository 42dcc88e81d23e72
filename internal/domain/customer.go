package domain

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Customer is built incrementally as the funnel advances; only the
// identification step requires it to be complete.
type Customer struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Document string   `json:"document"`
	Phone    string   `json:"phone"`
	Address  *Address `json:"address,omitempty"`
}

// IdentificationComplete is the validity predicate of the first funnel step.
func (c Customer) IdentificationComplete() bool {
	return c.Name != "" && c.Email != "" && c.Document != "" && c.Phone != ""
}

// Merge overlays non-empty fields, keeping what was already collected.
func (c Customer) Merge(in Customer) Customer {
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Document != "" {
		c.Document = in.Document
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	if in.Address != nil {
		c.Address = in.Address
	}
	return c
}
