package payments

import "testing"

func TestFeeSchedule_Apply(t *testing.T) {
	fees := FeeSchedule{Percent: 0.029, Flat: 0.30}

	tests := []struct {
		amount, fee, net float64
	}{
		{100, 3.20, 96.80},
		{250, 7.55, 242.45},
		{10, 0.59, 9.41},
		{19.99, 0.88, 19.11},
	}

	for _, tt := range tests {
		fee, net := fees.Apply(tt.amount)
		if fee != tt.fee || net != tt.net {
			t.Errorf("Apply(%v) = (%v, %v), want (%v, %v)", tt.amount, fee, net, tt.fee, tt.net)
		}
	}
}
