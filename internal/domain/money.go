package domain

// Money is carried as int64 minor units (cents) and rates as basis points,
// so fee math stays exact without a decimal dependency.

// ApplyRateBps multiplies an amount by a basis-point rate, rounding half up.
// Amounts are expected to be non-negative.
func ApplyRateBps(amountCents int64, rateBps int32) int64 {
	raw := amountCents * int64(rateBps)
	fee := raw / 10000
	if raw%10000*2 >= 10000 {
		fee++
	}
	return fee
}
