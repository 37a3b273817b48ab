package matcher

import (
	"fmt"
	"strings"
)

// 解释文案的权重与分档阈值。打分逻辑与Rank的权重独立，
// 解释始终使用固定的0.4/0.4/0.2组合，保证文案可复现。
const (
	explainSimilarityWeight = 0.4
	explainCoverageWeight   = 0.4
	explainDensityWeight    = 0.2

	maxStrongSkillsShown  = 5
	maxMissingSkillsShown = 3
)

// generateExplanation 根据三项分数生成人类可读的匹配解释。
// 相同输入永远产生相同文案。
func generateExplanation(similarity, coverage, density float64, matchingSkills, missingSkills []string) string {
	overall := explainSimilarityWeight*similarity +
		explainCoverageWeight*coverage +
		explainDensityWeight*density

	var parts []string

	switch {
	case overall >= 0.8:
		parts = append(parts, "Excellent overall match for this position.")
	case overall >= 0.6:
		parts = append(parts, "Good match with some areas for improvement.")
	case overall >= 0.4:
		parts = append(parts, "Moderate match - consider additional preparation.")
	default:
		parts = append(parts, "Limited match - significant gaps identified.")
	}

	switch {
	case similarity >= 0.7:
		parts = append(parts, "Excellent semantic alignment with the job description.")
	case similarity >= 0.5:
		parts = append(parts, "Good semantic similarity with the role requirements.")
	default:
		parts = append(parts, "Limited semantic similarity with the job description.")
	}

	switch {
	case coverage >= 0.8:
		parts = append(parts, "Excellent skill coverage for this role.")
	case coverage >= 0.6:
		parts = append(parts, "Good skill match for most requirements.")
	case coverage >= 0.4:
		parts = append(parts, "Moderate skill coverage - some gaps exist.")
	default:
		parts = append(parts, "Significant skill gaps for this position.")
	}

	if len(matchingSkills) > 0 {
		shown := matchingSkills
		if len(shown) > maxStrongSkillsShown {
			shown = shown[:maxStrongSkillsShown]
		}
		parts = append(parts, fmt.Sprintf("Strong skills in: %s.", strings.Join(shown, ", ")))
	}

	if len(missingSkills) > 0 {
		shown := missingSkills
		if len(shown) > maxMissingSkillsShown {
			shown = shown[:maxMissingSkillsShown]
		}
		parts = append(parts, fmt.Sprintf("Consider developing skills in: %s.", strings.Join(shown, ", ")))
	}

	return strings.Join(parts, " ")
}
