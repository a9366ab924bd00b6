package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogSelect(t *testing.T) {
	cat := DefaultCatalog()

	tests := []struct {
		year    int
		schemas []string
	}{
		{2022, []string{"two-segment"}},
		{2023, []string{"two-segment"}},
		{2024, []string{"three-segment", "two-segment"}},
		{2025, []string{"three-segment"}},
		{2026, []string{"three-segment"}},
	}

	for _, tt := range tests {
		got := cat.Select(tt.year)
		if len(got) != len(tt.schemas) {
			t.Errorf("Select(%d): got %d schemas, want %d", tt.year, len(got), len(tt.schemas))
			continue
		}
		for i, s := range got {
			if s.Name != tt.schemas[i] {
				t.Errorf("Select(%d)[%d] = %q, want %q", tt.year, i, s.Name, tt.schemas[i])
			}
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 10, Max: 200}
	for _, v := range []float64{10, 200, 50.5} {
		if !r.Contains(v) {
			t.Errorf("Contains(%v) = false, want true", v)
		}
	}
	for _, v := range []float64{9.99, 200.01, -10} {
		if r.Contains(v) {
			t.Errorf("Contains(%v) = true, want false", v)
		}
	}
}

func writeSchemaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog_EmptyPathReturnsDefaults(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	if cat.NewEraStart != 2025 || cat.TransitionStart != 2024 {
		t.Errorf("got cutovers %d/%d, want 2025/2024", cat.NewEraStart, cat.TransitionStart)
	}
	if len(cat.New.Segments) != 3 || len(cat.Legacy.Segments) != 2 {
		t.Errorf("got %d/%d segments, want 3/2", len(cat.New.Segments), len(cat.Legacy.Segments))
	}
}

func TestLoadCatalog_Overrides(t *testing.T) {
	path := writeSchemaFile(t, `
schemas:
  new_era_start: 2027
  transition_start: 2026
  growth:
    min: -80
    max: 150
  new:
    segment_bounds:
      min: 5000000
      max: 400000000
    segments:
      - name: Infrastructure
        patterns:
          - 'Infrastructure[\s\S]{0,160}?\$?\s*([\d,]+(?:\.\d+)?)\s*(million|billion)'
      - name: Devices
        patterns:
          - 'Devices[\s\S]{0,160}?\$?\s*([\d,]+(?:\.\d+)?)\s*(million|billion)'
`)

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if cat.NewEraStart != 2027 || cat.TransitionStart != 2026 {
		t.Errorf("got cutovers %d/%d, want 2027/2026", cat.NewEraStart, cat.TransitionStart)
	}
	if cat.Growth != (Range{Min: -80, Max: 150}) {
		t.Errorf("growth = %+v", cat.Growth)
	}
	if cat.Margin != (Range{Min: 5, Max: 60}) {
		t.Errorf("margin changed without override: %+v", cat.Margin)
	}
	if len(cat.New.Segments) != 2 {
		t.Fatalf("got %d new-era segments, want 2", len(cat.New.Segments))
	}
	if cat.New.Segments[0].Name != "Infrastructure" || cat.New.Segments[1].Name != "Devices" {
		t.Errorf("segment names = %q, %q", cat.New.Segments[0].Name, cat.New.Segments[1].Name)
	}
	want := Range{Min: 5000000, Max: 400000000}
	if cat.New.Segments[0].Bounds != want {
		t.Errorf("segment bounds = %+v, want %+v", cat.New.Segments[0].Bounds, want)
	}
	// Legacy untouched.
	if len(cat.Legacy.Segments) != 2 || cat.Legacy.Segments[0].Name != "Connected Home" {
		t.Errorf("legacy schema changed without override")
	}
}

func TestLoadCatalog_RejectsInvertedCutovers(t *testing.T) {
	path := writeSchemaFile(t, `
schemas:
  new_era_start: 2024
  transition_start: 2025
`)
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for transition_start after new_era_start")
	}
}

func TestLoadCatalog_RejectsPatternWithoutGroups(t *testing.T) {
	path := writeSchemaFile(t, `
schemas:
  total:
    patterns:
      - 'revenues of \$[\d,.]+ million'
`)
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for pattern without amount and scale groups")
	}
}

func TestLoadCatalog_RejectsBadRegexp(t *testing.T) {
	path := writeSchemaFile(t, `
schemas:
  total:
    patterns:
      - 'revenues of ([\d,.]+ (million'
`)
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
