package utils

import "github.com/shopspring/decimal"

// RoundRating rounds half-up to one decimal place.
func RoundRating(v decimal.Decimal) decimal.Decimal {
	return v.Round(1)
}
