package deeddoc

import "math"

// DefaultWeedFeeBPS is the platform commission in basis points (300 = 3%).
// Both the fee calculation and the assignment document builder consume this
// single constant via config; it is not configurable per campaign.
const DefaultWeedFeeBPS = 300

// CalculateWeedFee computes the platform fee on a total order value, rounded
// to cents. Intermediate order math stays unrounded; this is the only place
// money is rounded before presentation.
func CalculateWeedFee(totalValue float64, feeBPS int) float64 {
	fee := totalValue * float64(feeBPS) / 10000
	return math.Round(fee*100) / 100
}

// FeePercent renders basis points as a percentage (300 -> 3).
func FeePercent(feeBPS int) float64 {
	return float64(feeBPS) / 100
}
