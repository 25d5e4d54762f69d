package core

import "testing"

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{amount: 500, want: 50000},
		{amount: 0.1, want: 10},
		{amount: 19.99, want: 1999},
		{amount: 1500, want: 150000},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(tt.amount); got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}
