package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentChange returns (current-initial)/initial*100 rounded to 2 dp, nil when initial is zero.
func PercentChange(initial float64, current float64) *float64 {
	if initial == 0 {
		return nil
	}
	init := decimal.NewFromFloat(initial)
	v, _ := decimal.NewFromFloat(current).Sub(init).Div(init).Mul(hundred).Round(2).Float64()
	return &v
}

// ProgressToTarget returns how far the price travelled from initial towards target, in percent.
// It works for both directions and is nil without a usable target.
func ProgressToTarget(initial float64, current float64, target *float64) *float64 {
	if target == nil || *target == initial {
		return nil
	}
	init := decimal.NewFromFloat(initial)
	distance := decimal.NewFromFloat(*target).Sub(init)
	v, _ := decimal.NewFromFloat(current).Sub(init).Div(distance).Mul(hundred).Round(2).Float64()
	return &v
}
