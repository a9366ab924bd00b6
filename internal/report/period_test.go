package report

import "testing"

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		filename string
		year     int
		quarter  int
		label    string
	}{
		{"NETGEAR Reports First Quarter 2025 Results.txt", 2025, 1, "Q1-2025"},
		{"NETGEAR Reports Second Quarter 2024 Results.txt", 2024, 2, "Q2-2024"},
		{"NETGEAR Reports Third Quarter 2023 Results.txt", 2023, 3, "Q3-2023"},
		{"NETGEAR Reports Fourth Quarter and Full Year 2024 Results.txt", 2024, 4, "Q4-2024"},
		{"netgear reports fourth quarter and full year 2023 results.txt", 2023, 4, "Q4-2023"},
		{"report q3 2024 update.txt", 2024, 3, "Q3-2024"},
		{"earnings-Q1-2025.txt", 2025, 1, "Q1-2025"},
		{"Quarter 2 2024 summary.txt", 2024, 2, "Q2-2024"},
	}

	for _, tt := range tests {
		p, ok := ResolvePeriod(tt.filename)
		if !ok {
			t.Errorf("ResolvePeriod(%q): no match", tt.filename)
			continue
		}
		if p.FiscalYear != tt.year || p.FiscalQuarter != tt.quarter {
			t.Errorf("ResolvePeriod(%q) = %d Q%d, want %d Q%d",
				tt.filename, p.FiscalYear, p.FiscalQuarter, tt.year, tt.quarter)
		}
		if p.Label != tt.label {
			t.Errorf("ResolvePeriod(%q) label = %q, want %q", tt.filename, p.Label, tt.label)
		}
	}
}

func TestResolvePeriod_NoMatch(t *testing.T) {
	for _, filename := range []string{
		"annual-meeting-notes.txt",
		"NETGEAR Investor Day 2024.txt", // year without quarter phrasing
		"",
	} {
		if _, ok := ResolvePeriod(filename); ok {
			t.Errorf("ResolvePeriod(%q): expected no match", filename)
		}
	}
}

func TestResolvePeriod_CombinedPhrasingWinsOverLaterYear(t *testing.T) {
	// First pattern match wins; no reconciliation against later text.
	p, ok := ResolvePeriod("Fourth Quarter and Full Year 2024 vs First Quarter 2025.txt")
	if !ok {
		t.Fatal("expected a match")
	}
	if p.FiscalQuarter != 4 || p.FiscalYear != 2024 {
		t.Errorf("got %s, want Q4-2024", p.Label)
	}
}
