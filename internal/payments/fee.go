package payments

import "math"

// FeeSchedule is a percentage-plus-flat processing fee
type FeeSchedule struct {
	Percent float64 // 0.029 for 2.9%
	Flat    float64
}

// Apply returns the fee and net amount for amount, both rounded to cents
func (f FeeSchedule) Apply(amount float64) (fee, net float64) {
	fee = roundCents(amount*f.Percent + f.Flat)
	net = roundCents(amount - fee)
	return fee, net
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
