// Package money formats integer minor units for API responses.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wishlist-backend/pkg/enums"
)

const minorUnitExp = 2

// Amount is the wire form of a monetary value.
type Amount struct {
	Cents    int            `json:"cents"`
	Amount   string         `json:"amount"`
	Currency enums.Currency `json:"currency"`
}

// FromCents converts cents into an Amount with a fixed two-decimal string.
func FromCents(cents int, currency enums.Currency) Amount {
	return Amount{
		Cents:    cents,
		Amount:   Format(cents),
		Currency: currency,
	}
}

// Format renders cents as a decimal string, e.g. 1999 -> "19.99".
func Format(cents int) string {
	return decimal.NewFromInt(int64(cents)).Shift(-minorUnitExp).StringFixed(minorUnitExp)
}

// Multiply returns unit * quantity as cents.
func Multiply(unitCents, quantity int) int {
	return int(decimal.NewFromInt(int64(unitCents)).Mul(decimal.NewFromInt(int64(quantity))).IntPart())
}
