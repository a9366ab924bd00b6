package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/marketlens/reportcli/internal/model"
)

// quarterWords maps English ordinal quarter words to quarter numbers.
// Matching is case-insensitive and locale-fixed to English; no other
// calendar conventions are supported.
var quarterWords = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
}

// periodPattern is one accepted phrasing of a fiscal period in a filename.
type periodPattern struct {
	re      *regexp.Regexp
	resolve func(groups []string) (quarter, year int, ok bool)
}

// filenamePatterns are tried in order; the first match wins and no attempt is
// made to reconcile conflicting matches later in the name.
var filenamePatterns = []periodPattern{
	// "Fourth Quarter and Full Year 2024" resolves to Q4 of the stated year:
	// full-year disclosures are filed alongside Q4 results.
	{
		re: regexp.MustCompile(`(?i)fourth\s+quarter\s+and\s+full\s+year\s+(\d{4})`),
		resolve: func(g []string) (int, int, bool) {
			year, err := strconv.Atoi(g[1])
			return 4, year, err == nil
		},
	},
	// "First Quarter 2025", "third quarter 2023", ...
	{
		re: regexp.MustCompile(`(?i)(first|second|third|fourth)\s+quarter\s+(\d{4})`),
		resolve: func(g []string) (int, int, bool) {
			q, ok := quarterWords[strings.ToLower(g[1])]
			if !ok {
				return 0, 0, false
			}
			year, err := strconv.Atoi(g[2])
			return q, year, err == nil
		},
	},
	// "Q3 2024", "Q3-2024"
	{
		re: regexp.MustCompile(`(?i)\bQ([1-4])[\s_-]*(\d{4})`),
		resolve: func(g []string) (int, int, bool) {
			q, _ := strconv.Atoi(g[1])
			year, err := strconv.Atoi(g[2])
			return q, year, err == nil
		},
	},
	// "Quarter 2 2024"
	{
		re: regexp.MustCompile(`(?i)quarter\s+([1-4])\s+(\d{4})`),
		resolve: func(g []string) (int, int, bool) {
			q, _ := strconv.Atoi(g[1])
			year, err := strconv.Atoi(g[2])
			return q, year, err == nil
		},
	},
}

// ResolvePeriod maps a report filename to its fiscal period. The second
// return value is false when no known phrasing matches; the caller records
// the document as period_parse_failed and skips it.
func ResolvePeriod(filename string) (model.Period, bool) {
	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		quarter, year, ok := p.resolve(m)
		if !ok {
			continue
		}
		period, err := model.NewPeriod(year, quarter)
		if err != nil {
			continue
		}
		return period, true
	}
	return model.Period{}, false
}
