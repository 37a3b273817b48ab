package ontology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOntologyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidOntology(t *testing.T) {
	path := writeOntologyFile(t, `
programming:
  - python
  - sql
  - go
machine_learning:
  - machine learning
  - deep learning
`)

	o, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"programming", "machine_learning"}, o.Categories())
	assert.Equal(t, []string{"python", "sql", "go"}, o.Skills("programming"))
	assert.Equal(t, 2, o.CategoryCount())
	assert.Equal(t, 5, o.SkillCount())
	assert.Nil(t, o.Skills("unknown"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var formatErr *FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestLoadMalformedCases(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"非映射结构", "- just\n- a\n- list\n"},
		{"类别值不是列表", "programming: not-a-list\n"},
		{"技能不是字符串", "programming:\n  - python\n  - [nested, list]\n"},
		{"技能是整数", "programming:\n  - python\n  - 42\n"},
		{"技能是布尔值", "programming:\n  - python\n  - true\n"},
		{"技能是null", "programming:\n  - python\n  - ~\n"},
		{"空技能标签", "programming:\n  - python\n  - \"\"\n"},
		{"空文件", ""},
		{"非法YAML", "programming: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeOntologyFile(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var formatErr *FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestLoadQuotedScalarSkill(t *testing.T) {
	// 带引号的数字形标签是合法字符串，不能被类型检查误杀
	path := writeOntologyFile(t, "certs:\n  - \"365\"\n  - c++\n")
	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"365", "c++"}, o.Skills("certs"))
}

func TestLoadDuplicateCategory(t *testing.T) {
	path := writeOntologyFile(t, "prog:\n  - python\nprog:\n  - sql\n")
	_, err := Load(path)
	// yaml.v3本身可能拒绝重复键；无论哪一层拒绝，都必须报FormatError
	require.Error(t, err)
	var formatErr *FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestWalkOrderAndEarlyStop(t *testing.T) {
	path := writeOntologyFile(t, `
b_cat:
  - skill1
  - skill2
a_cat:
  - skill3
`)
	o, err := Load(path)
	require.NoError(t, err)

	var visited []string
	o.Walk(func(category, skill string) bool {
		visited = append(visited, category+"/"+skill)
		return len(visited) < 2
	})

	// 遍历顺序跟随文件书写顺序，而不是字母序
	assert.Equal(t, []string{"b_cat/skill1", "b_cat/skill2"}, visited)
}

func TestSkillsReturnsCopy(t *testing.T) {
	path := writeOntologyFile(t, "prog:\n  - python\n")
	o, err := Load(path)
	require.NoError(t, err)

	s := o.Skills("prog")
	s[0] = "mutated"
	assert.Equal(t, []string{"python"}, o.Skills("prog"))
}
