package report

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive plausibility interval. Values outside it are
// discarded, never clamped: a regular-expression match carries no structural
// guarantee that it is semantically the intended figure, so the range encodes
// the extractor's domain prior and a missed figure is preferred to a wrong one.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// MetricSpec names one extractable metric: an ordered pattern list and the
// plausible range for matches. Each pattern must capture the numeric amount
// in group 1 and the currency-scale word in group 2.
type MetricSpec struct {
	Name     string
	Patterns []*regexp.Regexp
	Bounds   Range
}

// Schema is the set of segment specs for one reporting era. Segment order is
// the extraction order.
type Schema struct {
	Name     string
	Segments []MetricSpec
}

// Catalog holds every era schema plus the selection cutovers and the
// era-independent specs. Bounds and pattern lists are empirically tuned
// constants kept as data; LoadCatalog applies overrides from a YAML file.
type Catalog struct {
	// NewEraStart is the first fiscal year reported exclusively under the
	// three-segment convention. TransitionStart is the first year in which
	// documents may use either convention; years before it are legacy-only.
	NewEraStart     int
	TransitionStart int

	New    *Schema
	Legacy *Schema
	Total  MetricSpec

	Growth Range
	Margin Range
}

// minSegmentsForNewSchema is the transition-year evidence threshold: a
// greater matched-category count is treated as stronger evidence of the
// newer reporting convention.
const minSegmentsForNewSchema = 2

// Select returns the ordered list of schemas to try for a fiscal year.
// Transition-band years get [new, legacy]; the engine attempts the new
// schema first and falls back per minSegmentsForNewSchema.
func (c *Catalog) Select(year int) []*Schema {
	switch {
	case year >= c.NewEraStart:
		return []*Schema{c.New}
	case year < c.TransitionStart:
		return []*Schema{c.Legacy}
	default:
		return []*Schema{c.New, c.Legacy}
	}
}

// amount captures a currency figure and its scale word, e.g. "$182.4 million".
const amount = `\$?\s*([\d,]+(?:\.\d+)?)\s*(million|billion)`

// gap bounds how far a qualifying phrase may sit from its figure. It never
// crosses a blank line, so a segment name cannot bind a figure from the next
// paragraph. Built from single-newline units because RE2 has no lookahead.
const gap = `(?:[^\n]|\n[^\n]){0,160}?\n?`

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

// DefaultCatalog returns the built-in schema table. The segment names and
// bands track NETGEAR's reporting history: two segments (Connected Home /
// NETGEAR for Business) through fiscal 2023, a transition year in 2024, and
// three segments (NETGEAR for Business / Home Networking / Mobile) from 2025.
func DefaultCatalog() *Catalog {
	newSegmentBounds := Range{Min: 10e6, Max: 200e6}
	legacySegmentBounds := Range{Min: 10e6, Max: 300e6}

	return &Catalog{
		NewEraStart:     2025,
		TransitionStart: 2024,
		New: &Schema{
			Name: "three-segment",
			Segments: []MetricSpec{
				{
					Name: "NETGEAR for Business",
					Patterns: compileAll([]string{
						`NETGEAR\s+for\s+Business` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`NFB` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`Business\s+segment` + gap + amount,
					}),
					Bounds: newSegmentBounds,
				},
				{
					Name: "Home Networking",
					Patterns: compileAll([]string{
						`Home\s+Networking` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`Home\s+Networking` + gap + amount,
					}),
					Bounds: newSegmentBounds,
				},
				{
					Name: "Mobile",
					Patterns: compileAll([]string{
						`Mobile` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`Mobile\s+segment` + gap + amount,
					}),
					Bounds: newSegmentBounds,
				},
			},
		},
		Legacy: &Schema{
			Name: "two-segment",
			Segments: []MetricSpec{
				{
					Name: "Connected Home",
					Patterns: compileAll([]string{
						`Connected\s+Home` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`Connected\s+Home` + gap + amount,
					}),
					Bounds: legacySegmentBounds,
				},
				{
					Name: "NETGEAR for Business",
					Patterns: compileAll([]string{
						`NETGEAR\s+for\s+Business` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`NFB` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
						`Business\s+segment` + gap + `revenues?\s+(?:of\s+|were\s+)?` + amount,
					}),
					Bounds: legacySegmentBounds,
				},
			},
		},
		Total: MetricSpec{
			Name: "total revenue",
			Patterns: compileAll([]string{
				`Net\s+revenues?\s+(?:of\s+|were\s+)?` + amount,
				`Total\s+net\s+revenues?\s+(?:of\s+|were\s+)?` + amount,
				`revenues?\s+(?:of\s+|were\s+)?` + amount,
			}),
			// Wider than any segment band: the company-wide figure.
			Bounds: Range{Min: 50e6, Max: 500e6},
		},
		Growth: Range{Min: -50, Max: 100},
		Margin: Range{Min: 5, Max: 60},
	}
}

// catalogFile is the YAML override format. Missing values keep defaults.
type catalogFile struct {
	Schemas struct {
		NewEraStart     int             `yaml:"new_era_start"`
		TransitionStart int             `yaml:"transition_start"`
		New             *schemaOverride `yaml:"new"`
		Legacy          *schemaOverride `yaml:"legacy"`
		Total           *metricOverride `yaml:"total"`
		Growth          *Range          `yaml:"growth"`
		Margin          *Range          `yaml:"margin"`
	} `yaml:"schemas"`
}

type schemaOverride struct {
	SegmentBounds *Range           `yaml:"segment_bounds"`
	Segments      []metricOverride `yaml:"segments"`
}

type metricOverride struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Bounds   *Range   `yaml:"bounds"`
}

// LoadCatalog reads schema overrides from a YAML file and applies them on
// top of the defaults. An empty path returns the defaults unchanged.
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read schema file %s", path)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "report: parse schema file %s", path)
	}

	s := f.Schemas
	if s.NewEraStart != 0 {
		cat.NewEraStart = s.NewEraStart
	}
	if s.TransitionStart != 0 {
		cat.TransitionStart = s.TransitionStart
	}
	if cat.TransitionStart > cat.NewEraStart {
		return nil, eris.Errorf("report: schema file %s: transition_start %d after new_era_start %d",
			path, cat.TransitionStart, cat.NewEraStart)
	}
	if s.Growth != nil {
		cat.Growth = *s.Growth
	}
	if s.Margin != nil {
		cat.Margin = *s.Margin
	}
	if s.Total != nil {
		if err := applyMetricOverride(&cat.Total, *s.Total); err != nil {
			return nil, eris.Wrapf(err, "report: schema file %s: total", path)
		}
	}
	if s.New != nil {
		if err := applySchemaOverride(cat.New, *s.New); err != nil {
			return nil, eris.Wrapf(err, "report: schema file %s: new", path)
		}
	}
	if s.Legacy != nil {
		if err := applySchemaOverride(cat.Legacy, *s.Legacy); err != nil {
			return nil, eris.Wrapf(err, "report: schema file %s: legacy", path)
		}
	}

	return cat, nil
}

func applySchemaOverride(schema *Schema, o schemaOverride) error {
	if o.SegmentBounds != nil {
		for i := range schema.Segments {
			schema.Segments[i].Bounds = *o.SegmentBounds
		}
	}
	if len(o.Segments) == 0 {
		return nil
	}

	// A segments list replaces the whole table for the era: the override is
	// the authoritative ordered set, not a patch.
	fallback := Range{Min: 10e6, Max: 300e6}
	if o.SegmentBounds != nil {
		fallback = *o.SegmentBounds
	}
	segments := make([]MetricSpec, 0, len(o.Segments))
	for _, m := range o.Segments {
		spec := MetricSpec{Name: m.Name, Bounds: fallback}
		if err := applyMetricOverride(&spec, m); err != nil {
			return eris.Wrapf(err, "segment %q", m.Name)
		}
		if len(spec.Patterns) == 0 {
			return eris.Errorf("segment %q: no patterns", m.Name)
		}
		segments = append(segments, spec)
	}
	schema.Segments = segments
	return nil
}

func applyMetricOverride(spec *MetricSpec, o metricOverride) error {
	if o.Name != "" {
		spec.Name = o.Name
	}
	if o.Bounds != nil {
		spec.Bounds = *o.Bounds
	}
	if len(o.Patterns) > 0 {
		compiled := make([]*regexp.Regexp, 0, len(o.Patterns))
		for _, p := range o.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return eris.Wrapf(err, "compile pattern %q", p)
			}
			if re.NumSubexp() < 2 {
				return eris.Errorf("pattern %q must capture amount and scale word", p)
			}
			compiled = append(compiled, re)
		}
		spec.Patterns = compiled
	}
	return nil
}
