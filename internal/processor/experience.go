package processor

import (
	"regexp"
	"strconv"
)

// 工作年限的显式表达模式，按优先级排列。
// 第一个产生数字匹配的模式胜出，取其所有匹配中的最大值：
// 文档里往往同时出现单段任职年限和累计年限，最大值最可能是累计值。
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?[\s\w]*experience`),
	regexp.MustCompile(`(?i)experience.*?(\d+)\s*\+?\s*years?`),
	regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?.*?experience`),
	regexp.MustCompile(`(?i)(\d+)\s*yr`),
	regexp.MustCompile(`(?i)(\d+)\s*yr\.`),
}

// 形如 "2018-2022" 或 "2019-present" 的日期区间
var dateRangeRe = regexp.MustCompile(`(?i)(\d{4}[\s\-–]*\d{4}|\d{4}[\s\-–]*(?:present|current|now))`)

// 日期区间回退法的年限上限，避免大段参考文献的年份刷高结果
const maxInferredYears = 15.0

// ExtractExperienceYears 从文本中推断工作年限。
// 优先用显式的"N years ... experience"类模式；都未命中时
// 回退为统计日期区间个数（上限15）。两者都失败时返回0。
// 这是弱启发式契约，结果不保证真实准确。
func ExtractExperienceYears(text string) float64 {
	if text == "" {
		return 0.0
	}

	for _, pattern := range experiencePatterns {
		matches := pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}

		maxYears := 0.0
		found := false
		for _, match := range matches {
			if len(match) < 2 {
				continue
			}
			years, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			found = true
			if float64(years) > maxYears {
				maxYears = float64(years)
			}
		}
		if found {
			return maxYears
		}
	}

	// 回退：按日期区间个数粗估
	dateMatches := dateRangeRe.FindAllString(text, -1)
	if len(dateMatches) > 0 {
		years := float64(len(dateMatches))
		if years > maxInferredYears {
			return maxInferredYears
		}
		return years
	}

	return 0.0
}
