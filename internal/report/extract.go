package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// scaleWords maps currency-scale words to their multipliers.
var scaleWords = map[string]int64{
	"million": 1_000_000,
	"billion": 1_000_000_000,
}

// Extracted is the ephemeral result of one successful pattern match. It is
// discarded once normalized into a record.
type Extracted struct {
	Raw   string // full matched text
	Value int64  // absolute currency units
	Start int    // character span of the match in the document
	End   int
}

// ExtractMetric scans the full document text with the spec's ordered pattern
// list and returns the first plausible value. Matches are taken in pattern
// order, not text order: an earlier pattern is a more specific phrasing, and
// its match wins even when a later pattern would match earlier in the text.
//
// The second return value is false when no pattern yields a value inside the
// plausible range. An absent metric is never reported as zero — domain text
// never states a true zero, so zero would be indistinguishable from an
// unparsed value.
func ExtractMetric(text string, spec MetricSpec) (Extracted, bool) {
	for _, re := range spec.Patterns {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			// idx[2:4] = amount group, idx[4:6] = scale word group.
			if len(idx) < 6 || idx[2] < 0 || idx[4] < 0 {
				continue
			}
			value, ok := scaleAmount(text[idx[2]:idx[3]], text[idx[4]:idx[5]])
			if !ok {
				continue
			}
			if !spec.Bounds.Contains(float64(value)) {
				// Syntactic match, implausible figure — a share count, a
				// date fragment, or a stray digit. Keep looking.
				continue
			}
			return Extracted{
				Raw:   text[idx[0]:idx[1]],
				Value: value,
				Start: idx[0],
				End:   idx[1],
			}, true
		}
	}
	return Extracted{}, false
}

// scaleAmount converts a matched figure like ("182.4", "million") to absolute
// units. Decimal arithmetic avoids binary-float drift on amounts such as
// $182.4M, which must come out as exactly 182,400,000.
func scaleAmount(amountText, scaleWord string) (int64, bool) {
	mult, ok := scaleWords[strings.ToLower(scaleWord)]
	if !ok {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(amountText, ",", ""))
	if err != nil {
		return 0, false
	}
	return d.Mul(decimal.NewFromInt(mult)).IntPart(), true
}
