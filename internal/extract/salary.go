// Package extract - salary.go parses salary display text into a normalized
// numeric range with a pay period.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/jobwatch/internal/types"
)

// SalaryRange is the normalized result of parsing a salary fragment.
type SalaryRange struct {
	Raw    string
	Min    float64
	Max    float64
	Period string // types.SalaryPeriodHourly or types.SalaryPeriodAnnual
}

var (
	// amountToken matches one currency amount with an optional thousands
	// multiplier, e.g. "$97.6k", "120,000", "$55K".
	amountToken = regexp.MustCompile(`\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([kK])?`)

	// salaryFragment matches a leading currency amount, optionally followed
	// by a dash and a second amount. Used both on insight widgets and as the
	// free-text description fallback.
	salaryFragment = regexp.MustCompile(`\$\s*[0-9][0-9,]*(?:\.[0-9]+)?\s*[kK]?(?:\s*(?:/\s*\w+|per\s+\w+|an?\s+\w+))?(?:\s*[-–—]\s*\$?\s*[0-9][0-9,]*(?:\.[0-9]+)?\s*[kK]?(?:\s*(?:/\s*\w+|per\s+\w+|an?\s+\w+))?)?`)

	hourlyHint = regexp.MustCompile(`(?i)(/\s*h(?:ou)?r|per\s+hour|hourly|an\s+hour)`)
	annualHint = regexp.MustCompile(`(?i)(/\s*y(?:ea)?r|per\s+year|annual|a\s+year|yearly)`)
)

// ParseSalary parses one salary fragment. The pay period is detected from
// unit hints before any numbers are parsed; deciding hourly-vs-annual from
// magnitude alone misclassifies ranges that straddle both representations.
// Each side of a range carries its own "k" multiplier, so "$97.6k - 100k"
// parses as 97600-100000. The result always satisfies Min <= Max.
func ParseSalary(text string) (*SalaryRange, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !strings.Contains(text, "$") {
		return nil, false
	}

	// Period first.
	period := ""
	switch {
	case hourlyHint.MatchString(text):
		period = types.SalaryPeriodHourly
	case annualHint.MatchString(text):
		period = types.SalaryPeriodAnnual
	}

	matches := amountToken.FindAllStringSubmatch(text, 2)
	if len(matches) == 0 {
		return nil, false
	}

	min, ok := parseAmount(matches[0])
	if !ok {
		return nil, false
	}
	max := min
	if len(matches) > 1 {
		if v, ok := parseAmount(matches[1]); ok {
			max = v
		}
	}

	// Only fall back to magnitude when no explicit unit hint was present.
	if period == "" {
		if max < 1000 {
			period = types.SalaryPeriodHourly
		} else {
			period = types.SalaryPeriodAnnual
		}
	}

	if min > max {
		min, max = max, min
	}

	return &SalaryRange{Raw: text, Min: min, Max: max, Period: period}, true
}

// parseAmount converts one amountToken submatch into a number, applying the
// side's own k multiplier.
func parseAmount(m []string) (float64, bool) {
	raw := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		value *= 1000
	}
	return value, true
}

// SalaryFromInsights scans curated insight fragments for the first one with a
// leading currency amount and parses it.
func SalaryFromInsights(insights []string) (*SalaryRange, bool) {
	for _, fragment := range insights {
		trimmed := strings.TrimSpace(fragment)
		if !strings.HasPrefix(trimmed, "$") {
			continue
		}
		if parsed, ok := ParseSalary(trimmed); ok {
			return parsed, true
		}
	}
	return nil, false
}

// SalaryFromDescription is the free-text fallback: it pulls the first
// salary-looking fragment out of the description and parses it with the same
// period-before-magnitude rule.
func SalaryFromDescription(description string) (*SalaryRange, bool) {
	fragment := salaryFragment.FindString(description)
	if fragment == "" {
		return nil, false
	}
	return ParseSalary(fragment)
}
