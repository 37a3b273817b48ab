package skills

import (
	"regexp"
	"strings"
)

// 常见缩写的展开表。缩写只在作为独立token出现时展开，
// 避免把"email"里的"ai"之类误展开。
var abbreviationPatterns = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bml\b`), "machine learning"},
	{regexp.MustCompile(`\bai\b`), "artificial intelligence"},
	{regexp.MustCompile(`\bui\b`), "user interface"},
	{regexp.MustCompile(`\bux\b`), "user experience"},
	{regexp.MustCompile(`\bapi\b`), "rest apis"},
}

var (
	// 保留字母数字及 + # . - 和空格，其余字符替换为空格
	invalidCharsRe = regexp.MustCompile(`[^a-z0-9+#.\- ]`)
	// 连续空白折叠
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize 把自由文本规范化为适合技能匹配的形式：
// 小写、展开常见缩写、剔除无关标点、折叠空白。
// 纯函数且幂等：Normalize(Normalize(t)) == Normalize(t)。
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)

	for _, abbr := range abbreviationPatterns {
		text = abbr.pattern.ReplaceAllString(text, abbr.replacement)
	}

	text = invalidCharsRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
