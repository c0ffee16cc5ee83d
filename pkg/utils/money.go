package utils

import "github.com/shopspring/decimal"

// ToMinorUnits converts an amount to the smallest currency unit (paise).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
