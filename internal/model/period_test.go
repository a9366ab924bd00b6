package model

import "testing"

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(2025, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Label != "Q1-2025" || p.String() != "Q1-2025" {
		t.Errorf("label = %q, want Q1-2025", p.Label)
	}

	for _, tt := range []struct{ year, quarter int }{
		{2025, 0},
		{2025, 5},
		{1776, 1},
		{3000, 1},
	} {
		if _, err := NewPeriod(tt.year, tt.quarter); err == nil {
			t.Errorf("NewPeriod(%d, %d): expected error", tt.year, tt.quarter)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := PeriodLabel(2024, 4); got != "Q4-2024" {
		t.Errorf("got %q, want Q4-2024", got)
	}
}
