package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateExplanation_OverallBands(t *testing.T) {
	testCases := []struct {
		name       string
		similarity float64
		coverage   float64
		density    float64
		wantPhrase string
	}{
		// overall = 0.4*sim + 0.4*cov + 0.2*den
		{"优秀", 0.9, 0.9, 0.9, "Excellent overall match for this position."},
		{"良好", 0.65, 0.65, 0.65, "Good match with some areas for improvement."},
		{"一般", 0.45, 0.45, 0.45, "Moderate match - consider additional preparation."},
		{"有限", 0.1, 0.1, 0.1, "Limited match - significant gaps identified."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := generateExplanation(tc.similarity, tc.coverage, tc.density, nil, nil)
			assert.Contains(t, got, tc.wantPhrase)
		})
	}
}

func TestGenerateExplanation_SimilarityBands(t *testing.T) {
	assert.Contains(t,
		generateExplanation(0.7, 0, 0, nil, nil),
		"Excellent semantic alignment with the job description.")
	assert.Contains(t,
		generateExplanation(0.5, 0, 0, nil, nil),
		"Good semantic similarity with the role requirements.")
	assert.Contains(t,
		generateExplanation(0.49, 0, 0, nil, nil),
		"Limited semantic similarity with the job description.")
}

func TestGenerateExplanation_CoverageBands(t *testing.T) {
	assert.Contains(t,
		generateExplanation(0, 0.8, 0, nil, nil),
		"Excellent skill coverage for this role.")
	assert.Contains(t,
		generateExplanation(0, 0.6, 0, nil, nil),
		"Good skill match for most requirements.")
	assert.Contains(t,
		generateExplanation(0, 0.4, 0, nil, nil),
		"Moderate skill coverage - some gaps exist.")
	assert.Contains(t,
		generateExplanation(0, 0.39, 0, nil, nil),
		"Significant skill gaps for this position.")
}

func TestGenerateExplanation_SkillLists(t *testing.T) {
	matching := []string{"a", "b", "c", "d", "e", "f", "g"}
	missing := []string{"x", "y", "z", "w"}

	got := generateExplanation(0.5, 0.5, 0.5, matching, missing)

	// 匹配技能最多展示5个，缺失技能最多展示3个
	assert.Contains(t, got, "Strong skills in: a, b, c, d, e.")
	assert.NotContains(t, got, "f")
	assert.Contains(t, got, "Consider developing skills in: x, y, z.")
	assert.NotContains(t, got, "w")
}

func TestGenerateExplanation_EmptySkillLists(t *testing.T) {
	got := generateExplanation(0.9, 0.9, 0.9, nil, nil)
	assert.NotContains(t, got, "Strong skills in")
	assert.NotContains(t, got, "Consider developing skills in")
}

func TestGenerateExplanation_Deterministic(t *testing.T) {
	first := generateExplanation(0.72, 0.61, 0.4, []string{"go", "sql"}, []string{"docker"})
	second := generateExplanation(0.72, 0.61, 0.4, []string{"go", "sql"}, []string{"docker"})
	assert.Equal(t, first, second)
}
