package report

import (
	"strings"
	"testing"
)

func TestExtractMetric_TotalRevenue(t *testing.T) {
	total := DefaultCatalog().Total

	text := "NETGEAR, Inc. today reported financial results. Net revenues were " +
		"$182.4 million for the fourth quarter of 2024, compared to $188.7 million " +
		"in the year-ago quarter."

	got, ok := ExtractMetric(text, total)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 182_400_000 {
		t.Errorf("value = %d, want 182400000", got.Value)
	}
	if text[got.Start:got.End] != got.Raw {
		t.Errorf("span [%d:%d] does not reproduce raw match %q", got.Start, got.End, got.Raw)
	}
}

func TestExtractMetric_ImplausibleMatchSkipped(t *testing.T) {
	total := DefaultCatalog().Total

	// The first syntactic match is far below the plausible band and must be
	// passed over in favor of the later, plausible one.
	text := "Net revenues of $2.4 million from licensing. " +
		"Net revenues were $182.4 million for the quarter."

	got, ok := ExtractMetric(text, total)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 182_400_000 {
		t.Errorf("value = %d, want 182400000", got.Value)
	}
}

func TestExtractMetric_StopsAtParagraphBreak(t *testing.T) {
	home := DefaultCatalog().New.Segments[1]

	// Home Networking's own paragraph phrases the figure as "decreased ...
	// to", which only the looser second pattern accepts. The stricter first
	// pattern must fail outright rather than reach across the blank line and
	// bind the next segment's "revenues of" figure.
	text := "Home Networking revenues decreased by 8.7% to $61.4 million.\n\n" +
		"Mobile revenues of $21.5 million decreased 2.1% year over year."

	got, ok := ExtractMetric(text, home)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 61_400_000 {
		t.Errorf("value = %d, want 61400000", got.Value)
	}
	if strings.Contains(got.Raw, "Mobile") {
		t.Errorf("match crossed into the next paragraph: %q", got.Raw)
	}
}

func TestExtractMetric_AbsentIsNotZero(t *testing.T) {
	total := DefaultCatalog().Total

	for _, text := range []string{
		"",
		"No financial figures are disclosed in this document.",
		"Net revenues were $2.4 million.",   // below the plausible band
		"Net revenues were $900.0 million.", // above the plausible band
	} {
		if got, ok := ExtractMetric(text, total); ok {
			t.Errorf("ExtractMetric(%q) = %d, expected no match", text, got.Value)
		}
	}
}

func TestExtractMetric_PatternOrderBeatsTextOrder(t *testing.T) {
	spec := MetricSpec{
		Name: "alpha",
		Patterns: compileAll([]string{
			`Alpha` + gap + amount,
			`Beta` + gap + amount,
		}),
		Bounds: Range{Min: 10e6, Max: 40e6},
	}

	// The Beta phrase appears first in the text, but the Alpha pattern is
	// ranked higher and its match wins.
	text := "Beta shipments brought in $20.0 million. Alpha shipments brought in $30.0 million."

	got, ok := ExtractMetric(text, spec)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 30_000_000 {
		t.Errorf("value = %d, want 30000000", got.Value)
	}
}

func TestExtractMetric_BillionScale(t *testing.T) {
	spec := MetricSpec{
		Name:     "annual",
		Patterns: compileAll([]string{`revenues?\s+of\s+` + amount}),
		Bounds:   Range{Min: 1e9, Max: 2e9},
	}

	got, ok := ExtractMetric("Annual revenues of $1.2 billion.", spec)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 1_200_000_000 {
		t.Errorf("value = %d, want 1200000000", got.Value)
	}
}

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		amount string
		scale  string
		want   int64
		ok     bool
	}{
		{"182.4", "million", 182_400_000, true},
		{"182.4", "Million", 182_400_000, true},
		{"1.2", "billion", 1_200_000_000, true},
		{"1,234.5", "million", 1_234_500_000, true},
		{"50", "million", 50_000_000, true},
		{"5", "thousand", 0, false},
		{"abc", "million", 0, false},
	}

	for _, tt := range tests {
		got, ok := scaleAmount(tt.amount, tt.scale)
		if ok != tt.ok || got != tt.want {
			t.Errorf("scaleAmount(%q, %q) = %d, %v; want %d, %v",
				tt.amount, tt.scale, got, ok, tt.want, tt.ok)
		}
	}
}
