package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobwatch/internal/platform"
	"github.com/jonathan/jobwatch/internal/types"
)

// Extract builds a JobPostingRecord from a rendered document. It returns
// (nil, nil) when the minimum-viable-data condition is not met yet: the
// caller should treat that as "not ready" and retry, not as "not a posting".
func Extract(doc *goquery.Document, pageURL string) (*types.JobPostingRecord, error) {
	detected := platform.Detect(pageURL)
	jobID := platform.JobID(detected, pageURL)
	if jobID == "" {
		return nil, nil
	}

	selectors := platform.Selectors(detected)

	title := firstPlausible(doc, selectors.Title, plausibleTitle)
	if title == "" {
		title = firstPlausible(doc, platform.GenericTitleSelectors(), plausibleTitle)
	}
	if title == "" {
		title = titleFromDocumentTitle(doc)
	}
	if title == "" {
		return nil, nil
	}

	company := firstPlausible(doc, selectors.Company, plausibleCompany)
	if company == "" {
		company = firstPlausible(doc, platform.GenericCompanySelectors(), plausibleCompany)
	}
	if company == "" {
		company = firstPlausibleAttr(doc, []string{".main-header-logo img"}, "alt", plausibleCompany)
	}

	location := firstPlausible(doc, selectors.Location, plausibleLocation)

	description := blockText(doc, selectors.Description, plausibleDescription)
	if description == "" {
		description = blockText(doc, platform.GenericDescriptionSelectors(), plausibleDescription)
	}

	insights := collectTexts(doc, selectors.Insights)

	record := &types.JobPostingRecord{
		PlatformJobID: jobID,
		SourceURL:     pageURL,
		Platform:      detected,
		Title:         types.StrPtr(title),
		Company:       types.StrPtr(company),
		Location:      types.StrPtr(location),
		Description:   types.StrPtr(description),
		DetectedAt:    time.Now().UTC(),
	}

	if salary, ok := SalaryFromInsights(insights); ok {
		applySalary(record, salary)
	} else if salary, ok := SalaryFromDescription(description); ok {
		applySalary(record, salary)
	}

	record.LocationType = detectLocationType(location, insights, description)
	record.EmploymentType = detectEmploymentType(insights, description)
	record.SeniorityLevel = detectSeniority(title, insights)
	record.ExperienceYears = detectExperienceYears(description)
	record.EducationLevel = detectEducationLevel(description)
	record.Skills = MatchSkills(description)
	record.Benefits = MatchBenefits(description)

	if description != "" {
		record.ContentHash = types.HashContent(description)
	}
	record.NormalizeSalaryBounds()
	record.DataQuality = Quality(record)

	return record, nil
}

func applySalary(record *types.JobPostingRecord, salary *SalaryRange) {
	record.Salary = types.StrPtr(salary.Raw)
	min, max := salary.Min, salary.Max
	record.SalaryMin = &min
	record.SalaryMax = &max
	record.SalaryPeriod = types.StrPtr(salary.Period)
}

var titleSuffixRegex = regexp.MustCompile(`\s*[|\-–]\s*(LinkedIn|Indeed\.com|Indeed|Glassdoor).*$`)

// titleFromDocumentTitle falls back to the page <title>, stripping the site
// name suffix job boards append.
func titleFromDocumentTitle(doc *goquery.Document) string {
	raw := collapseSpaces(doc.Find("title").First().Text())
	stripped := titleSuffixRegex.ReplaceAllString(raw, "")
	if plausibleTitle(stripped) {
		return stripped
	}
	return ""
}

var (
	remoteRegex = regexp.MustCompile(`(?i)\bremote\b`)
	hybridRegex = regexp.MustCompile(`(?i)\bhybrid\b`)
	onsiteRegex = regexp.MustCompile(`(?i)\bon[- ]?site\b`)
)

// detectLocationType checks the location text first, then the insight
// fragments, then the description, so the most specific signal wins.
func detectLocationType(location string, insights []string, description string) *string {
	sources := append([]string{location}, insights...)
	sources = append(sources, description)
	for _, source := range sources {
		switch {
		case hybridRegex.MatchString(source):
			return types.StrPtr(types.LocationHybrid)
		case remoteRegex.MatchString(source):
			return types.StrPtr(types.LocationRemote)
		case onsiteRegex.MatchString(source):
			return types.StrPtr(types.LocationOnsite)
		}
	}
	return nil
}

var employmentTypes = []string{
	"full-time", "full time", "part-time", "part time", "contract",
	"temporary", "internship", "freelance",
}

func detectEmploymentType(insights []string, description string) *string {
	sources := append(append([]string{}, insights...), description)
	for _, source := range sources {
		lower := strings.ToLower(source)
		for _, et := range employmentTypes {
			if strings.Contains(lower, et) {
				return types.StrPtr(strings.ReplaceAll(et, " ", "-"))
			}
		}
	}
	return nil
}

var seniorityLevels = []string{
	"internship", "entry level", "associate", "mid-senior level",
	"senior", "staff", "principal", "lead", "director", "executive",
}

func detectSeniority(title string, insights []string) *string {
	sources := append([]string{title}, insights...)
	for _, source := range sources {
		lower := strings.ToLower(source)
		for _, level := range seniorityLevels {
			if strings.Contains(lower, level) {
				return types.StrPtr(level)
			}
		}
	}
	return nil
}

var experienceRegex = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:or more\s+)?years?`)

func detectExperienceYears(description string) *int {
	m := experienceRegex.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	years := 0
	for _, r := range m[1] {
		years = years*10 + int(r-'0')
	}
	if years == 0 || years > 30 {
		return nil
	}
	return &years
}

var educationPatterns = []struct {
	regex *regexp.Regexp
	level string
}{
	{regexp.MustCompile(`(?i)\b(ph\.?d|doctorate|doctoral)\b`), types.EducationPhD},
	{regexp.MustCompile(`(?i)\b(master'?s?|m\.?s\.?|mba)\s+(degree|in|of|or)`), types.EducationMaster},
	{regexp.MustCompile(`(?i)\b(bachelor'?s?|b\.?s\.?|b\.?a\.?)\s+(degree|in|of|or)`), types.EducationBachelor},
	{regexp.MustCompile(`(?i)\bassociate'?s?\s+degree\b`), types.EducationAssociate},
}

func detectEducationLevel(description string) *string {
	// Highest-ranked pattern wins; the list is ordered phd-first so a posting
	// mentioning several degrees reports the most advanced one.
	for _, p := range educationPatterns {
		if p.regex.MatchString(description) {
			return types.StrPtr(p.level)
		}
	}
	return nil
}
