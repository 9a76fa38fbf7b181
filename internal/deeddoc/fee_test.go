package deeddoc

import "testing"

func TestCalculateWeedFee(t *testing.T) {
	tests := []struct {
		total    float64
		bps      int
		expected float64
	}{
		{0, 300, 0},
		{100, 300, 3},
		{5000, 300, 150},
		{1234.56, 300, 37.04},  // 37.0368 rounds to cents
		{0.10, 300, 0},         // 0.003 rounds down
		{0.50, 300, 0.02},      // 0.015 rounds up
		{1000000, 300, 30000},
	}
	for _, tt := range tests {
		if got := CalculateWeedFee(tt.total, tt.bps); got != tt.expected {
			t.Errorf("CalculateWeedFee(%v, %d) = %v, want %v", tt.total, tt.bps, got, tt.expected)
		}
	}
}

func TestFeePercent(t *testing.T) {
	if got := FeePercent(300); got != 3 {
		t.Errorf("FeePercent(300) = %v, want 3", got)
	}
	if got := FeePercent(DefaultWeedFeeBPS); got != 3 {
		t.Errorf("FeePercent(DefaultWeedFeeBPS) = %v, want 3", got)
	}
}

func TestTotalValueAndFormat(t *testing.T) {
	items := []ItemLine{
		{RowTotal: 500},
		{RowTotal: 0.5},
	}
	total := TotalValue(items)
	if total != 500.5 {
		t.Errorf("TotalValue = %v, want 500.5", total)
	}
	if got := FormatAmount(total); got != "500.50" {
		t.Errorf("FormatAmount = %q, want \"500.50\"", got)
	}
	if got := FormatAmount(500); got != "500.00" {
		t.Errorf("FormatAmount = %q, want \"500.00\"", got)
	}
}
