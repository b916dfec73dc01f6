// Package extract - quality.go derives the data-quality flag for a record.
package extract

import (
	"strings"

	"github.com/jonathan/jobwatch/internal/types"
)

// genericTitles are synthesized placeholders that indicate the title did not
// come from real posting content.
var genericTitles = map[string]bool{
	"job posting":   true,
	"job":           true,
	"untitled":      true,
	"job details":   true,
	"job listing":   true,
	"open position": true,
}

// Quality computes the data-quality flag: good iff the title is non-generic,
// the company is present, and the description exceeds the minimum length.
// Poor records are still captured; downstream consumers see the flag and may
// discount confidence.
func Quality(record *types.JobPostingRecord) string {
	if record.Title == nil || genericTitles[strings.ToLower(strings.TrimSpace(*record.Title))] {
		return types.QualityPoor
	}
	if record.Company == nil {
		return types.QualityPoor
	}
	if record.Description == nil || len(*record.Description) <= types.MinDescriptionLength {
		return types.QualityPoor
	}
	return types.QualityGood
}
