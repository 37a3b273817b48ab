package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"空输入", "", ""},
		{"小写化", "Python SQL", "python sql"},
		{"缩写展开ml", "experience with ml models", "experience with machine learning models"},
		{"缩写展开ai", "ai research", "artificial intelligence research"},
		{"缩写展开ui与ux", "ui and ux design", "user interface and user experience design"},
		{"缩写展开api", "building an api", "building an rest apis"},
		{"缩写在单词内不展开", "maintain email trail", "maintain email trail"},
		{"保留加号井号点和连字符", "c++ c# node.js front-end", "c++ c# node.js front-end"},
		{"剔除其他标点", "python, sql; (docker)", "python sql docker"},
		{"空白折叠与修剪", "  python \t sql \n docker  ", "python sql docker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Experience with ML, AI and API design!",
		"Front-End / Back-End (5+ years)",
		"",
		"   spaces   everywhere   ",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input: %q", input)
	}
}
