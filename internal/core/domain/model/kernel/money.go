package kernel

import (
	"fmt"

	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in the account currency, held as a decimal
// so freight and COD charges add up without float drift.
//
// The zero value is a valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{}

// NewMoney validates that amount is not negative.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, "+inf")
	}
	return Money{amount: amount}, nil
}

// MoneyFromString parses a decimal string such as "125.50".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("parse %q: %w", s, err))
	}
	return NewMoney(d)
}

// MoneyFromFloat converts a provider float, rounding to paise.
func MoneyFromFloat(f float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(f).Round(2))
}

// Decimal returns the underlying amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Cmp compares two amounts the way decimal.Cmp does.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String formats the amount with two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}
