// Package extract - vocabulary.go matches a fixed skill and benefit
// vocabulary against description text. Matching runs on an Aho-Corasick
// automaton for one pass over the text, with a whole-word boundary check on
// each hit so "java" never matches inside "javascript".
package extract

import (
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
)

// skillVocabulary is the curated set of skills recognized in descriptions.
// Display casing is preserved in the extracted record.
var skillVocabulary = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "C++", "C#",
	"Ruby", "Rust", "Kotlin", "Swift", "PHP", "Scala", "SQL", "NoSQL",
	"React", "Angular", "Vue", "Node.js", "Django", "Flask", "Spring",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Jenkins",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka",
	"GraphQL", "REST", "gRPC", "Git", "CI/CD", "Linux", "Agile", "Scrum",
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Pandas",
	"Spark", "Hadoop", "Airflow", "Snowflake", "Tableau", "Excel",
}

// benefitVocabulary is the curated set of benefits recognized in descriptions.
var benefitVocabulary = []string{
	"401k", "401(k)", "health insurance", "dental insurance", "vision insurance",
	"medical insurance", "life insurance", "disability insurance",
	"paid time off", "PTO", "unlimited PTO", "parental leave", "maternity leave",
	"paternity leave", "remote work", "flexible hours", "flexible schedule",
	"stock options", "equity", "RSU", "bonus", "signing bonus",
	"tuition reimbursement", "professional development", "gym membership",
	"wellness program", "commuter benefits", "free lunch",
}

type vocabularyMatcher struct {
	matcher *ahocorasick.Matcher
	terms   []string // display form, index-aligned with the automaton
}

func newVocabularyMatcher(vocabulary []string) *vocabularyMatcher {
	lowered := make([]string, len(vocabulary))
	for i, term := range vocabulary {
		lowered[i] = strings.ToLower(term)
	}
	return &vocabularyMatcher{
		matcher: ahocorasick.NewStringMatcher(lowered),
		terms:   vocabulary,
	}
}

var (
	skillMatcher   = newVocabularyMatcher(skillVocabulary)
	benefitMatcher = newVocabularyMatcher(benefitVocabulary)
)

// MatchSkills returns the skills found in the text, deduplicated, in
// vocabulary order. Matching is case-insensitive and whole-word.
func MatchSkills(text string) []string {
	return skillMatcher.match(text)
}

// MatchBenefits returns the benefits found in the text, deduplicated.
func MatchBenefits(text string) []string {
	return benefitMatcher.match(text)
}

func (v *vocabularyMatcher) match(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)
	hits := v.matcher.Match([]byte(lower))
	if len(hits) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(hits))
	for _, hit := range hits {
		if wholeWordPresent(lower, strings.ToLower(v.terms[hit])) {
			seen[hit] = true
		}
	}

	// Vocabulary order keeps output deterministic regardless of hit order.
	var out []string
	for i, term := range v.terms {
		if seen[i] {
			out = append(out, term)
		}
	}
	return out
}

// wholeWordPresent reports whether term occurs in text bounded by non-word
// characters on both sides.
func wholeWordPresent(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		leftOK := idx == 0 || !isWordChar(rune(text[idx-1]))
		rightOK := end == len(text) || !isWordChar(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(r rune) bool {
	// '+' and '#' bind to the preceding token ("C++", "C#") but do not make a
	// standalone hit part of a larger word.
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
