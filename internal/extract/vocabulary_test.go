package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSkills(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "case insensitive match",
			text:     "Experience with GO, python and kubernetes required.",
			expected: []string{"Go", "Python", "Kubernetes"},
		},
		{
			name:     "whole word only",
			text:     "We use JavaScript heavily.",
			expected: []string{"JavaScript"}, // not Java
		},
		{
			name:     "duplicates suppressed",
			text:     "Python, Python, and more Python.",
			expected: []string{"Python"},
		},
		{
			name:     "multi word skill",
			text:     "Background in machine learning is a plus.",
			expected: []string{"Machine Learning"},
		},
		{
			name:     "no match",
			text:     "We value teamwork and communication.",
			expected: nil,
		},
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchSkills(tt.text))
		})
	}
}

func TestMatchSkillsGoNotInsideGolang(t *testing.T) {
	// "Golang" matches the Golang entry; the embedded "go" must not also
	// count as a whole-word Go hit on its own.
	skills := MatchSkills("Golang developers wanted")
	assert.Contains(t, skills, "Golang")
	assert.NotContains(t, skills, "Go")
}

func TestMatchBenefits(t *testing.T) {
	text := "We offer health insurance, 401k matching, unlimited PTO and equity."

	benefits := MatchBenefits(text)

	assert.Contains(t, benefits, "health insurance")
	assert.Contains(t, benefits, "401k")
	assert.Contains(t, benefits, "unlimited PTO")
	assert.Contains(t, benefits, "equity")
}

func TestMatchBenefitsEmpty(t *testing.T) {
	assert.Nil(t, MatchBenefits("no perks mentioned"))
}
