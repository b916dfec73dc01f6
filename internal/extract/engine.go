// Package extract implements the heuristic field extractor: it turns a
// rendered document into a JobPostingRecord, or reports "not ready" when the
// minimum-viable-data condition cannot be met yet.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Filter is a plausibility check applied to a candidate value before the
// engine accepts it.
type Filter func(string) bool

// firstPlausible walks an ordered selector chain and returns the text of the
// first candidate that passes the filter. Selector chains are tried
// most-specific first; this is what lets one engine serve every platform and
// survive layout churn within a platform.
func firstPlausible(doc *goquery.Document, selectors []string, filter Filter) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			candidate := collapseSpaces(sel.Text())
			if filter == nil || filter(candidate) {
				found = candidate
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// firstPlausibleAttr is firstPlausible for attribute values instead of text.
func firstPlausibleAttr(doc *goquery.Document, selectors []string, attr string, filter Filter) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			candidate, ok := sel.Attr(attr)
			if !ok {
				return true
			}
			candidate = collapseSpaces(candidate)
			if filter == nil || filter(candidate) {
				found = candidate
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// collectTexts gathers the collapsed text of every node matched by any of the
// selectors, preserving document order. Used for insight fragments where all
// matches matter, not just the first.
func collectTexts(doc *goquery.Document, selectors []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := collapseSpaces(sel.Text())
			if text != "" && !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		})
	}
	return out
}

// blockText extracts text from the first node matched by the chain while
// preserving line breaks: block-level children and <br> become newlines.
func blockText(doc *goquery.Document, selectors []string, filter Filter) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		text := htmlToText(html)
		if filter == nil || filter(text) {
			return text
		}
	}
	return ""
}

var (
	brTagRegex    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloseTag = regexp.MustCompile(`(?i)</(p|div|li|ul|ol|h[1-6]|tr|section)>`)
	liOpenTag     = regexp.MustCompile(`(?i)<li[^>]*>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	multiBlank    = regexp.MustCompile(`\n{3,}`)
	spaceRun      = regexp.MustCompile(`[ \t]+`)
)

// htmlToText flattens an HTML fragment to plain text with line breaks kept at
// block boundaries.
func htmlToText(html string) string {
	text := brTagRegex.ReplaceAllString(html, "\n")
	text = blockCloseTag.ReplaceAllString(text, "\n")
	text = liOpenTag.ReplaceAllString(text, "- ")
	text = anyTag.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&quot;", `"`)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// lengthBetween builds a filter accepting values whose trimmed length is in
// [min, max].
func lengthBetween(min, max int) Filter {
	return func(s string) bool {
		n := len(strings.TrimSpace(s))
		return n >= min && n <= max
	}
}

var siteBoilerplate = []string{
	"linkedin", "indeed", "glassdoor", "sign in", "sign up", "log in",
	"job search", "jobs in", "hiring now",
}

// plausibleTitle rejects empty, overlong, and site-name boilerplate headings.
func plausibleTitle(s string) bool {
	if !lengthBetween(3, 200)(s) {
		return false
	}
	lower := strings.ToLower(s)
	for _, noise := range siteBoilerplate {
		if strings.Contains(lower, noise) {
			return false
		}
	}
	return true
}

func plausibleCompany(s string) bool {
	if !lengthBetween(2, 100)(s) {
		return false
	}
	lower := strings.ToLower(s)
	for _, noise := range siteBoilerplate {
		if strings.Contains(lower, noise) {
			return false
		}
	}
	return true
}

func plausibleLocation(s string) bool {
	return lengthBetween(2, 120)(s)
}

func plausibleDescription(s string) bool {
	return len(strings.TrimSpace(s)) >= 40
}
