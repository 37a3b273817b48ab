package ontology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatError 技能本体文件格式错误
type FormatError struct {
	Path   string // 本体文件路径
	Detail string // 具体原因
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("技能本体格式错误 (文件:%s): %s", e.Path, e.Detail)
}

// Ontology 技能本体：类别到技能标签列表的只读映射。
// 加载完成后不可变，可安全地被多个goroutine并发读取。
// 类别顺序保留YAML文件中的书写顺序，保证遍历结果确定。
type Ontology struct {
	categories []string
	skills     map[string][]string
}

// Load 从YAML文件加载技能本体。
// 文件必须是"类别 -> 技能字符串列表"的映射，否则返回*FormatError。
func Load(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: path, Detail: "文件不存在"}
		}
		return nil, &FormatError{Path: path, Detail: fmt.Sprintf("读取文件失败: %v", err)}
	}
	return Parse(path, data)
}

// Parse 解析YAML内容为技能本体，path仅用于错误信息。
func Parse(path string, data []byte) (*Ontology, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &FormatError{Path: path, Detail: fmt.Sprintf("YAML解析失败: %v", err)}
	}

	if len(root.Content) == 0 {
		return nil, &FormatError{Path: path, Detail: "文件内容为空"}
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &FormatError{Path: path, Detail: "本体必须是类别到技能列表的映射"}
	}

	o := &Ontology{skills: make(map[string][]string)}

	// MappingNode的Content为 [key1, value1, key2, value2, ...]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode := doc.Content[i]
		valNode := doc.Content[i+1]

		category := keyNode.Value
		if category == "" {
			return nil, &FormatError{Path: path, Detail: "类别名不能为空"}
		}
		if _, dup := o.skills[category]; dup {
			return nil, &FormatError{Path: path, Detail: fmt.Sprintf("类别 '%s' 重复", category)}
		}
		if valNode.Kind != yaml.SequenceNode {
			return nil, &FormatError{Path: path, Detail: fmt.Sprintf("类别 '%s' 的值必须是技能列表", category)}
		}

		labels := make([]string, 0, len(valNode.Content))
		for _, item := range valNode.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return nil, &FormatError{Path: path, Detail: fmt.Sprintf("类别 '%s' 中的技能必须是字符串", category)}
			}
			if item.Value == "" {
				return nil, &FormatError{Path: path, Detail: fmt.Sprintf("类别 '%s' 中存在空技能标签", category)}
			}
			labels = append(labels, item.Value)
		}

		o.categories = append(o.categories, category)
		o.skills[category] = labels
	}

	return o, nil
}

// Categories 按文件顺序返回所有类别名
func (o *Ontology) Categories() []string {
	out := make([]string, len(o.categories))
	copy(out, o.categories)
	return out
}

// Skills 返回指定类别下的技能标签，类别不存在时返回nil
func (o *Ontology) Skills(category string) []string {
	labels, ok := o.skills[category]
	if !ok {
		return nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// CategoryCount 返回类别总数
func (o *Ontology) CategoryCount() int {
	return len(o.categories)
}

// SkillCount 返回全部技能条目数（跨类别重复的技能按出现次数计）
func (o *Ontology) SkillCount() int {
	total := 0
	for _, labels := range o.skills {
		total += len(labels)
	}
	return total
}

// Walk 按文件顺序遍历(类别,技能)对，fn返回false时提前终止
func (o *Ontology) Walk(fn func(category, skill string) bool) {
	for _, category := range o.categories {
		for _, skill := range o.skills[category] {
			if !fn(category, skill) {
				return
			}
		}
	}
}
