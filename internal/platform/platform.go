// Package platform provides job board platform detection, posting-view
// classification, and platform-assigned job id extraction from URLs.
package platform

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/jobwatch/internal/types"
)

// Detect identifies the job board platform from a URL.
func Detect(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return types.PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "linkedin.com"):
		return types.PlatformLinkedIn
	case strings.Contains(host, "indeed.com"):
		return types.PlatformIndeed
	case strings.Contains(host, "glassdoor.com"):
		return types.PlatformGlassdoor
	case strings.Contains(host, "greenhouse.io"):
		return types.PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return types.PlatformLever
	default:
		return types.PlatformUnknown
	}
}

var (
	linkedinViewPattern   = regexp.MustCompile(`/jobs/view/(\d+)`)
	glassdoorListingRegex = regexp.MustCompile(`(?i)jobListingId=(\d+)`)
	greenhousePathRegex   = regexp.MustCompile(`/jobs/(\d+)`)
	leverPathRegex        = regexp.MustCompile(`/[^/]+/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
)

// JobID extracts the platform-assigned job identifier from a posting URL.
// Returns an empty string when no identifier can be found.
func JobID(platform, urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	query := parsed.Query()

	switch platform {
	case types.PlatformLinkedIn:
		// Detail pages carry /jobs/view/{id}; search pages carry ?currentJobId=.
		if m := linkedinViewPattern.FindStringSubmatch(parsed.Path); m != nil {
			return m[1]
		}
		return query.Get("currentJobId")
	case types.PlatformIndeed:
		if jk := query.Get("jk"); jk != "" {
			return jk
		}
		return query.Get("vjk")
	case types.PlatformGlassdoor:
		if m := glassdoorListingRegex.FindStringSubmatch(urlStr); m != nil {
			return m[1]
		}
		return query.Get("jobListingId")
	case types.PlatformGreenhouse:
		if m := greenhousePathRegex.FindStringSubmatch(parsed.Path); m != nil {
			return m[1]
		}
	case types.PlatformLever:
		if m := leverPathRegex.FindStringSubmatch(parsed.Path); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsPostingURL reports whether the URL looks like a single posting's detail
// view rather than a search or listing page.
func IsPostingURL(urlStr string) bool {
	platform := Detect(urlStr)
	if platform == types.PlatformUnknown {
		return false
	}
	return JobID(platform, urlStr) != ""
}

// PostingMarkerSelectors returns DOM selectors whose presence indicates a
// rendered posting detail view, independent of the URL shape. Used as the
// second signal when classifying a navigation.
func PostingMarkerSelectors(platform string) []string {
	switch platform {
	case types.PlatformLinkedIn:
		return []string{
			".jobs-unified-top-card",
			".job-details-jobs-unified-top-card__job-title",
			".jobs-details__main-content",
		}
	case types.PlatformIndeed:
		return []string{
			".jobsearch-JobComponent",
			"#jobDescriptionText",
			"[data-testid='jobsearch-ViewJobPaneWrapper']",
		}
	case types.PlatformGlassdoor:
		return []string{
			"[data-test='job-details']",
			".JobDetails_jobDetailsContainer__y9P3L",
			"#JobDescriptionContainer",
		}
	case types.PlatformGreenhouse:
		return []string{
			".job__description",
			"#content .opening",
		}
	case types.PlatformLever:
		return []string{
			".posting-page",
			".posting-headline",
		}
	default:
		return nil
	}
}
