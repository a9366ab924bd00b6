package report

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// contextRadius is the character budget on each side of a matched value when
// mining its surroundings for growth and margin figures.
const contextRadius = 500

// Window returns the text surrounding the span [start, end), bounded by the
// character budget and secondarily clipped at the nearest blank-line
// paragraph boundary so the window does not run into an unrelated topic.
func Window(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}

	// Clip to the paragraph containing the match.
	if i := strings.LastIndex(text[lo:start], "\n\n"); i >= 0 {
		lo += i + 2
	}
	if i := strings.Index(text[end:hi], "\n\n"); i >= 0 {
		hi = end + i
	}

	return text[lo:hi]
}

const percent = `([\d,]+(?:\.\d+)?)\s*(?:%|percent)`

// growthPatterns are tried in order against a context window. Group 1 is the
// magnitude; polarity is resolved separately by resolvePolarity.
var growthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:increased|decreased|grew|declined|rose|fell)\s+(?:by\s+)?` + percent),
	regexp.MustCompile(`(?i)` + percent + `\s+(?:increase|decrease|growth|decline)`),
	regexp.MustCompile(`(?i)(\+|-)` + percent),
}

// negativeWords force a negative sign on a growth figure regardless of any
// embedded sign in the match.
var negativeWords = []string{"decrease", "decline", "lower", "fell", "down"}

// GrowthRate mines a context window for a year-over-year change figure.
// Polarity: a negative keyword anywhere in the window forces a negative sign;
// otherwise an embedded sign in the match is used; otherwise positive.
// Returns nil when nothing matches or the figure falls outside bounds —
// an extreme value is a probable mis-parse, not a figure to clamp.
func GrowthRate(window string, bounds Range) *float64 {
	for _, re := range growthPatterns {
		m := re.FindStringSubmatch(window)
		if m == nil {
			continue
		}

		var signText, magnitude string
		if len(m) == 3 {
			signText, magnitude = m[1], m[2]
		} else {
			magnitude = m[1]
		}

		v, ok := parsePercent(magnitude)
		if !ok {
			continue
		}

		if isNegativeContext(window) || signText == "-" {
			v = -v
		}
		if !bounds.Contains(v) {
			continue
		}
		return &v
	}
	return nil
}

// marginPatterns are tried in order; the keyword "margin" must sit adjacent
// to the percentage.
var marginPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gross\s+margin[^.%\n]{0,60}?` + percent),
	regexp.MustCompile(`(?i)margin[^.%\n]{0,60}?` + percent),
	regexp.MustCompile(`(?i)` + percent + `[^.\n]{0,60}?margin`),
}

// GrossMargin mines a context window for a margin percentage. Returns nil on
// no match or an out-of-bounds figure.
func GrossMargin(window string, bounds Range) *float64 {
	for _, re := range marginPatterns {
		m := re.FindStringSubmatch(window)
		if m == nil {
			continue
		}
		v, ok := parsePercent(m[1])
		if !ok {
			continue
		}
		if !bounds.Contains(v) {
			continue
		}
		return &v
	}
	return nil
}

func isNegativeContext(window string) bool {
	lower := strings.ToLower(window)
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func parsePercent(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
