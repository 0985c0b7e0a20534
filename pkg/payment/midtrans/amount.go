package midtrans

import "github.com/shopspring/decimal"

// toGrossAmount rounds to a whole amount; Midtrans rejects fractional gross amounts.
func toGrossAmount(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// truncate cuts s to at most max characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
