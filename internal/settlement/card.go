package settlement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCard = errors.New("invalid card data")

type CardDetails struct {
	Number      string `json:"number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// Validate checks format only; authorization is the gateway's call.
func (c CardDetails) Validate(now time.Time) error {
	digits := strings.ReplaceAll(strings.ReplaceAll(c.Number, " ", ""), "-", "")
	if len(digits) < 13 || len(digits) > 19 {
		return fmt.Errorf("%w: card number length", ErrInvalidCard)
	}
	if _, err := strconv.ParseUint(digits, 10, 64); err != nil {
		return fmt.Errorf("%w: card number must be numeric", ErrInvalidCard)
	}
	if !luhnValid(digits) {
		return fmt.Errorf("%w: card number checksum", ErrInvalidCard)
	}
	if strings.TrimSpace(c.HolderName) == "" {
		return fmt.Errorf("%w: holder name required", ErrInvalidCard)
	}
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month", ErrInvalidCard)
	}
	endOfMonth := time.Date(c.ExpiryYear, time.Month(c.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !endOfMonth.After(now) {
		return fmt.Errorf("%w: card expired", ErrInvalidCard)
	}
	if len(c.CVV) != 3 && len(c.CVV) != 4 {
		return fmt.Errorf("%w: cvv length", ErrInvalidCard)
	}
	if _, err := strconv.Atoi(c.CVV); err != nil {
		return fmt.Errorf("%w: cvv must be numeric", ErrInvalidCard)
	}
	return nil
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
