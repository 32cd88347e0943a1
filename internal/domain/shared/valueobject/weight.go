package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Weight is a value object for physical weight in kilograms
type Weight struct {
	kilograms decimal.Decimal
}

// NewWeight creates a Weight from a decimal kilogram value
func NewWeight(kilograms decimal.Decimal) (Weight, error) {
	if kilograms.IsNegative() {
		return Weight{}, fmt.Errorf("weight cannot be negative: %s", kilograms)
	}
	return Weight{kilograms: kilograms}, nil
}

// NewWeightFromFloat creates a Weight from a float64 kilogram value
func NewWeightFromFloat(kilograms float64) (Weight, error) {
	return NewWeight(decimal.NewFromFloat(kilograms))
}

// Kilograms returns the decimal kilogram value
func (w Weight) Kilograms() decimal.Decimal {
	return w.kilograms
}

// IsZero reports whether the weight is zero
func (w Weight) IsZero() bool {
	return w.kilograms.IsZero()
}

// LessThan reports whether this weight is lighter than the other
func (w Weight) LessThan(other Weight) bool {
	return w.kilograms.LessThan(other.kilograms)
}

// String returns e.g. "26.500 kg"
func (w Weight) String() string {
	return w.kilograms.StringFixed(3) + " kg"
}

// WeightRoundingPolicy rounds an actual weight up to a chargeable weight.
// Carriers bill by weight class, so the charged weight is the actual weight
// rounded up to the next increment (e.g. 0.5 kg). A zero increment disables
// rounding and charges the actual weight as-is.
type WeightRoundingPolicy struct {
	increment decimal.Decimal
}

// NewWeightRoundingPolicy creates a rounding policy with the given increment.
// The increment must not be negative.
func NewWeightRoundingPolicy(increment decimal.Decimal) (WeightRoundingPolicy, error) {
	if increment.IsNegative() {
		return WeightRoundingPolicy{}, fmt.Errorf("rounding increment cannot be negative: %s", increment)
	}
	return WeightRoundingPolicy{increment: increment}, nil
}

// NoRounding returns a policy that charges the actual weight unchanged
func NoRounding() WeightRoundingPolicy {
	return WeightRoundingPolicy{increment: decimal.Zero}
}

// Increment returns the rounding increment in kilograms
func (p WeightRoundingPolicy) Increment() decimal.Decimal {
	return p.increment
}

// ChargedWeight returns the billable weight for the given actual weight.
// The result is never below the actual weight.
func (p WeightRoundingPolicy) ChargedWeight(actual Weight) Weight {
	if p.increment.IsZero() {
		return actual
	}
	steps := actual.kilograms.Div(p.increment).Ceil()
	return Weight{kilograms: steps.Mul(p.increment)}
}
