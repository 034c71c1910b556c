package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MilliunitsPerUnit is the number of ledger milliunits in one currency unit.
const MilliunitsPerUnit = 1000

// MilliunitsToDecimal converts milliunits to an exact major unit amount.
func MilliunitsToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -3)
}

// FormatMilliunits renders a milliunit amount in the currency's display format
// (e.g. "$1,234.57"). Sub-minor digits are rounded half away from zero.
func FormatMilliunits(amount int64, currency string) string {
	currency = strings.ToUpper(currency)
	cur := money.New(0, currency).Currency()
	minor := MilliunitsToDecimal(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}
