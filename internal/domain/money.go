package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a money amount in integer minor currency units (centavos).
// All ledger arithmetic happens in cents so split comparisons never
// suffer binary floating-point drift.
type Cents int64

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string like "154.90" into cents,
// rounding half-up to the nearest minor unit.
func ParseAmount(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return CentsFromDecimal(d), nil
}

// CentsFromDecimal rounds half-up to the nearest minor unit.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// CentsFromFloat is used at JSON boundaries where collaborators send
// float prices. Goes through decimal to keep the rounding rule uniform.
func CentsFromFloat(f float64) Cents {
	return CentsFromDecimal(decimal.NewFromFloat(f))
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred)
}

// Float returns the amount in major units for outbound payloads.
func (c Cents) Float() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

func percentOf(value int64) decimal.Decimal {
	return decimal.NewFromInt(value).Div(hundred)
}
