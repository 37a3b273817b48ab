package parser

import (
	"regexp"
	"strings"
)

// PII提取用的正则
var (
	// 标准 local@domain.tld 邮箱
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// 宽松电话格式，容忍分隔符/括号/可选国家码
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(?\d{3}\)?[-.\s]?){2}\d{4}`)
	// "大写开头 大写开头"的双词姓名模式
	nameRe = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+`)
)

// ExtractPII 从文本中提取邮箱和电话，各取第一个匹配。
// 未找到时对应返回空串，绝不报错。
func ExtractPII(text string) (email, phone string) {
	if text == "" {
		return "", ""
	}
	return emailRe.FindString(text), phoneRe.FindString(text)
}

// ExtractName 启发式提取候选人姓名：
// 扫描前10行，返回第一个词数不超过4且匹配两段大写开头模式的行。
// 未找到时返回空串。这是弱启发式，不保证准确。
func ExtractName(text string) string {
	lines := strings.Split(text, "\n")
	limit := 10
	if len(lines) < limit {
		limit = len(lines)
	}

	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if line == "" || len(strings.Fields(line)) > 4 {
			continue
		}
		if nameRe.MatchString(line) {
			return line
		}
	}
	return ""
}
