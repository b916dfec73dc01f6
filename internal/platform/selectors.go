// Package platform - selectors.go provides per-platform field selector chains
// consumed by the extraction engine. Each chain is ordered most-specific first;
// the engine accepts the first candidate passing its plausibility filter.
package platform

import "github.com/jonathan/jobwatch/internal/types"

// FieldSelectors groups the ordered selector chains for one platform.
type FieldSelectors struct {
	Title       []string
	Company     []string
	Location    []string
	Description []string
	// Insights are small widget fragments near the title that carry salary,
	// employment type, and seniority text.
	Insights []string
}

// Selectors returns the field selector chains for a platform. Unknown
// platforms get only generic structural fallbacks, which the extraction
// engine appends for every platform anyway.
func Selectors(platform string) FieldSelectors {
	switch platform {
	case types.PlatformLinkedIn:
		return FieldSelectors{
			Title: []string{
				".job-details-jobs-unified-top-card__job-title h1",
				".jobs-unified-top-card__job-title",
				".top-card-layout__title",
			},
			Company: []string{
				".job-details-jobs-unified-top-card__company-name a",
				".jobs-unified-top-card__company-name",
				".topcard__org-name-link",
			},
			Location: []string{
				".job-details-jobs-unified-top-card__primary-description-container .tvm__text",
				".jobs-unified-top-card__bullet",
				".topcard__flavor--bullet",
			},
			Description: []string{
				".jobs-description__content .jobs-box__html-content",
				"#job-details",
				".description__text",
			},
			Insights: []string{
				".job-details-jobs-unified-top-card__job-insight",
				".jobs-unified-top-card__job-insight",
				".job-details-preferences-and-skills__pill",
			},
		}
	case types.PlatformIndeed:
		return FieldSelectors{
			Title: []string{
				"[data-testid='jobsearch-JobInfoHeader-title'] span",
				".jobsearch-JobInfoHeader-title",
				"h1.icl-u-xs-mb--xs",
			},
			Company: []string{
				"[data-testid='inlineHeader-companyName'] a",
				"[data-company-name='true']",
				".jobsearch-InlineCompanyRating-companyHeader",
			},
			Location: []string{
				"[data-testid='inlineHeader-companyLocation']",
				"[data-testid='job-location']",
				".jobsearch-JobInfoHeader-subtitle > div:last-child",
			},
			Description: []string{
				"#jobDescriptionText",
				".jobsearch-jobDescriptionText",
			},
			Insights: []string{
				"#salaryInfoAndJobType",
				"[data-testid='attribute_snippet_testid']",
				".jobsearch-JobMetadataHeader-item",
			},
		}
	case types.PlatformGlassdoor:
		return FieldSelectors{
			Title: []string{
				"[data-test='job-title']",
				".JobDetails_jobTitle__Rw_gl",
			},
			Company: []string{
				"[data-test='employer-name']",
				".EmployerProfile_employerNameHeading__bXBYr",
			},
			Location: []string{
				"[data-test='location']",
				".JobDetails_location__mSg5h",
			},
			Description: []string{
				".JobDetails_jobDescription__uW_fK",
				"#JobDescriptionContainer",
				"[data-test='jobDescriptionContent']",
			},
			Insights: []string{
				"[data-test='detailSalary']",
				".SalaryEstimate_salaryRange__brHFy",
			},
		}
	case types.PlatformGreenhouse:
		return FieldSelectors{
			Title:       []string{".app-title", ".job__title h1"},
			Company:     []string{".company-name", ".job__company"},
			Location:    []string{".location", ".job__location"},
			Description: []string{".job__description.body", ".job__description", "#content"},
			Insights:    []string{".job__pay", ".pay-range"},
		}
	case types.PlatformLever:
		return FieldSelectors{
			Title:       []string{".posting-headline h2"},
			Company:     []string{".main-header-logo img[alt]"},
			Location:    []string{".posting-categories .location", ".sort-by-time.posting-category"},
			Description: []string{".posting-description", ".section-wrapper.page-full-width"},
			Insights:    []string{".posting-categories .commitment", ".salary-range"},
		}
	default:
		return FieldSelectors{}
	}
}

// GenericTitleSelectors are structural fallbacks tried after the platform
// chain: the first heading of acceptable length wins.
func GenericTitleSelectors() []string {
	return []string{"h1", "h2", "[class*='job-title']", "[class*='jobTitle']"}
}

// GenericCompanySelectors are structural fallbacks for the company field,
// favoring links to company profile paths.
func GenericCompanySelectors() []string {
	return []string{
		"a[href*='/company/']",
		"a[href*='/cmp/']",
		"a[href*='/Overview/']",
		"[class*='company-name']",
		"[class*='companyName']",
	}
}

// GenericDescriptionSelectors are structural fallbacks for the description.
func GenericDescriptionSelectors() []string {
	return []string{
		"[class*='job-description']",
		"[class*='jobDescription']",
		"[id*='job-description']",
		"[id*='jobDescription']",
		"article",
		"main",
	}
}
