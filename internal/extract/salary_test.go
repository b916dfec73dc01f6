package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobwatch/internal/types"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		min      float64
		max      float64
		period   string
		parsable bool
	}{
		{
			name:   "annual range with K per side",
			text:   "$55K/yr - $60K/yr",
			min:    55000, max: 60000, period: types.SalaryPeriodAnnual,
			parsable: true,
		},
		{
			name:   "decimal k multiplier per side",
			text:   "$97.6k - 100k",
			min:    97600, max: 100000, period: types.SalaryPeriodAnnual,
			parsable: true,
		},
		{
			name:   "hourly range",
			text:   "$25 - $32 per hour",
			min:    25, max: 32, period: types.SalaryPeriodHourly,
			parsable: true,
		},
		{
			name:   "hourly slash unit",
			text:   "$18.50/hr",
			min:    18.50, max: 18.50, period: types.SalaryPeriodHourly,
			parsable: true,
		},
		{
			name:   "reversed range normalized",
			text:   "$120k - $90k",
			min:    90000, max: 120000, period: types.SalaryPeriodAnnual,
			parsable: true,
		},
		{
			name:   "single annual amount with commas",
			text:   "$145,000 a year",
			min:    145000, max: 145000, period: types.SalaryPeriodAnnual,
			parsable: true,
		},
		{
			name:   "period inferred hourly from magnitude",
			text:   "$22 - $28",
			min:    22, max: 28, period: types.SalaryPeriodHourly,
			parsable: true,
		},
		{
			name:   "period inferred annual from magnitude",
			text:   "$90,000 - $110,000",
			min:    90000, max: 110000, period: types.SalaryPeriodAnnual,
			parsable: true,
		},
		{
			name:   "explicit unit beats magnitude",
			text:   "$45,000 per hour contract equivalent",
			min:    45000, max: 45000, period: types.SalaryPeriodHourly,
			parsable: true,
		},
		{name: "no currency token", text: "competitive compensation", parsable: false},
		{name: "empty", text: "", parsable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseSalary(tt.text)
			if !tt.parsable {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.min, parsed.Min)
			assert.Equal(t, tt.max, parsed.Max)
			assert.Equal(t, tt.period, parsed.Period)
			assert.LessOrEqual(t, parsed.Min, parsed.Max)
		})
	}
}

func TestSalaryFromInsights(t *testing.T) {
	insights := []string{
		"Full-time",
		"Mid-Senior level",
		"$55K/yr - $60K/yr",
	}

	parsed, ok := SalaryFromInsights(insights)
	require.True(t, ok)
	assert.Equal(t, 55000.0, parsed.Min)
	assert.Equal(t, 60000.0, parsed.Max)
	assert.Equal(t, types.SalaryPeriodAnnual, parsed.Period)
}

func TestSalaryFromInsightsSkipsNonLeadingCurrency(t *testing.T) {
	insights := []string{"Posted 3 days ago, over $1B in funding"}

	_, ok := SalaryFromInsights(insights)
	assert.False(t, ok)
}

func TestSalaryFromDescription(t *testing.T) {
	description := "We are hiring.\nCompensation: $97.6k - 100k plus equity.\nApply now."

	parsed, ok := SalaryFromDescription(description)
	require.True(t, ok)
	assert.Equal(t, 97600.0, parsed.Min)
	assert.Equal(t, 100000.0, parsed.Max)
}

func TestSalaryFromDescriptionNoMatch(t *testing.T) {
	_, ok := SalaryFromDescription("no compensation information here")
	assert.False(t, ok)
}
