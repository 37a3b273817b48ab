package skills

import (
	"regexp"
	"sort"
	"strings"

	"resume-match-go/internal/ontology"
)

// skillMatches 判断规范化文本中是否出现了某个技能标签。
// 匹配使用全词边界；标签含连字符时同时尝试空格连接的变体，
// 以兼容 "front-end" / "front end" 两种写法。
func skillMatches(normText, skill string) bool {
	lower := strings.ToLower(skill)

	pattern := `\b` + regexp.QuoteMeta(lower) + `\b`
	if matched, _ := regexp.MatchString(pattern, normText); matched {
		return true
	}

	if strings.Contains(lower, "-") {
		spaced := strings.ReplaceAll(lower, "-", " ")
		hyphenPattern := `\b` + regexp.QuoteMeta(spaced) + `\b`
		if matched, _ := regexp.MatchString(hyphenPattern, normText); matched {
			return true
		}
	}

	return false
}

// Extract 从文本中提取本体内出现的技能，去重后按标签排序返回。
// 文本为空或本体为nil时返回空结果。
func Extract(text string, o *ontology.Ontology) []string {
	if text == "" || o == nil {
		return nil
	}

	normText := Normalize(text)
	found := make(map[string]struct{})

	o.Walk(func(_, skill string) bool {
		if _, ok := found[skill]; !ok && skillMatches(normText, skill) {
			found[skill] = struct{}{}
		}
		return true
	})

	result := make([]string, 0, len(found))
	for skill := range found {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}

// ExtractByCategory 提取技能并按类别分组。
// 同一技能出现在多个类别时会在每个类别下各出现一次。
// 只包含命中了至少一个技能的类别。
func ExtractByCategory(text string, o *ontology.Ontology) map[string][]string {
	if text == "" || o == nil {
		return map[string][]string{}
	}

	normText := Normalize(text)
	result := make(map[string][]string)

	for _, category := range o.Categories() {
		var categorySkills []string
		seen := make(map[string]struct{})
		for _, skill := range o.Skills(category) {
			if _, dup := seen[skill]; dup {
				continue
			}
			if skillMatches(normText, skill) {
				categorySkills = append(categorySkills, skill)
				seen[skill] = struct{}{}
			}
		}
		if len(categorySkills) > 0 {
			sort.Strings(categorySkills)
			result[category] = categorySkills
		}
	}

	return result
}

// Suggest 返回基于子串包含的宽松技能提示，最多maxSuggestions条。
// 不要求词边界，按本体遍历顺序返回，达到上限即停止。
// 仅作补充提示用，不参与打分。
func Suggest(text string, o *ontology.Ontology, maxSuggestions int) []string {
	if text == "" || o == nil || maxSuggestions <= 0 {
		return nil
	}

	normText := Normalize(text)
	var suggestions []string
	seen := make(map[string]struct{})

	o.Walk(func(_, skill string) bool {
		if _, dup := seen[skill]; !dup && strings.Contains(normText, strings.ToLower(skill)) {
			suggestions = append(suggestions, skill)
			seen[skill] = struct{}{}
		}
		return len(suggestions) < maxSuggestions
	})

	return suggestions
}

// Overlap 计算两个技能列表的Jaccard重合度，任一为空时返回0
func Overlap(skills1, skills2 []string) float64 {
	if len(skills1) == 0 || len(skills2) == 0 {
		return 0.0
	}

	set1 := make(map[string]struct{}, len(skills1))
	for _, s := range skills1 {
		set1[s] = struct{}{}
	}

	union := make(map[string]struct{}, len(skills1)+len(skills2))
	for s := range set1 {
		union[s] = struct{}{}
	}

	intersection := 0
	seen2 := make(map[string]struct{}, len(skills2))
	for _, s := range skills2 {
		if _, dup := seen2[s]; dup {
			continue
		}
		seen2[s] = struct{}{}
		union[s] = struct{}{}
		if _, ok := set1[s]; ok {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}
