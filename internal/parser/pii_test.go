package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPII(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectedEmail string
		expectedPhone string
	}{
		{
			name:          "邮箱和电话都存在",
			text:          "John Smith\njohn.smith@example.com\n+1 (555) 123-4567",
			expectedEmail: "john.smith@example.com",
			expectedPhone: "+1 (555) 123-4567",
		},
		{
			name:          "只有邮箱",
			text:          "Contact: dev+test@sub.example.org",
			expectedEmail: "dev+test@sub.example.org",
			expectedPhone: "",
		},
		{
			name:          "简单电话",
			text:          "call 555-123-4567 today",
			expectedEmail: "",
			expectedPhone: "555-123-4567",
		},
		{
			name:          "空文本",
			text:          "",
			expectedEmail: "",
			expectedPhone: "",
		},
		{
			name:          "取第一个匹配",
			text:          "a@b.com then c@d.com",
			expectedEmail: "a@b.com",
			expectedPhone: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, phone := ExtractPII(tt.text)
			assert.Equal(t, tt.expectedEmail, email)
			assert.Equal(t, tt.expectedPhone, phone)
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"首行即姓名", "John Smith\nSoftware Engineer", "John Smith"},
		{"跳过长行", "Curriculum vitae of a senior software engineer\nJane Doe\n", "Jane Doe"},
		{"跳过空行", "\n\nJane Doe\n", "Jane Doe"},
		{"全小写不算姓名", "john smith\n", ""},
		{"超过4词的行不算", "John Smith Senior Staff Engineer\n", ""},
		{"超出前10行不再扫描", "x\nx\nx\nx\nx\nx\nx\nx\nx\nx\nJohn Smith", ""},
		{"空文本", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractName(tt.text))
		})
	}
}

func TestStripRTFMarkup(t *testing.T) {
	input := `{\rtf1\ansi\deff0 {\fonttbl {\f0 Times;}}Hello World\par}`
	got := stripRTFMarkup(input)
	assert.Contains(t, got, "Hello World")
	assert.NotContains(t, got, "{")
	assert.NotContains(t, got, `\rtf1`)
}
