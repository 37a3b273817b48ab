package matcher

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"resume-match-go/internal/types"
)

// Weights 排序打分的权重配置
type Weights struct {
	Coverage   float64 // 技能覆盖率权重
	Similarity float64 // 语义相似度权重
	Density    float64 // 技能密度权重
}

// DefaultWeights 设计默认权重 0.4/0.4/0.2
func DefaultWeights() Weights {
	return Weights{Coverage: 0.4, Similarity: 0.4, Density: 0.2}
}

// Matcher 简历与岗位描述的匹配打分器。
// 无共享可变状态，单个实例可被多个goroutine并发调用；
// 每次Match调用相互独立，除返回值外无副作用。
type Matcher struct {
	embedder          TextEmbedder
	weights           Weights
	logger            *log.Logger
	vectorCache       VectorCache
	cacheModelVersion string
}

// errEmbeddingShape Embedding返回的向量数量或维度不符合预期
func errEmbeddingShape() error {
	return fmt.Errorf("Embedding返回的向量数量或维度异常")
}

// MatcherOption Matcher的配置选项
type MatcherOption func(*Matcher)

// WithWeights 覆盖默认排序权重
func WithWeights(w Weights) MatcherOption {
	return func(m *Matcher) {
		m.weights = w
	}
}

// WithMatcherLogger 设置自定义日志记录器
func WithMatcherLogger(logger *log.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMatcher 创建匹配器，embedder不能为空
func NewMatcher(embedder TextEmbedder, options ...MatcherOption) (*Matcher, error) {
	if embedder == nil {
		return nil, fmt.Errorf("TextEmbedder 不能为空")
	}

	m := &Matcher{
		embedder: embedder,
		weights:  DefaultWeights(),
		logger:   log.New(os.Stdout, "[Matcher] ", log.LstdFlags),
	}

	for _, option := range options {
		option(m)
	}

	return m, nil
}

// Similarity 计算两段文本的语义相似度，结果在[0,1]内。
// 任一文本为空白时直接返回0，不调用Embedding服务。
// Embedding失败时错误向上传播，绝不以错误分数静默成功。
func (m *Matcher) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	if strings.TrimSpace(textA) == "" || strings.TrimSpace(textB) == "" {
		return 0.0, nil
	}

	vectors, err := m.embedder.EmbedStrings(ctx, []string{textA, textB})
	if err != nil {
		return 0.0, fmt.Errorf("文本向量化失败: %w", err)
	}
	if len(vectors) != 2 || len(vectors[0]) == 0 || len(vectors[1]) == 0 {
		return 0.0, errEmbeddingShape()
	}

	similarity := cosineSimilarity(vectors[0], vectors[1])

	// 归一化向量的余弦值经验上非负，这里仍防御性截断到[0,1]
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	return similarity, nil
}

// cosineSimilarity 计算两个向量的余弦相似度，维度不一致或零向量时返回0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SkillCoverage 计算JD技能被简历覆盖的比例: |交集| / |JD技能|。
// JD技能为空时返回0：没有要求就无法正面声明覆盖。
func SkillCoverage(resumeSkills, jdSkills []string) float64 {
	jdSet := uniqueSet(jdSkills)
	if len(jdSet) == 0 {
		return 0.0
	}

	matched := 0
	for skill := range uniqueSet(resumeSkills) {
		if _, ok := jdSet[skill]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(jdSet))
}

// SkillDensity 计算简历技能中与该JD相关的比例: |交集| / |简历技能|。
// 简历技能为空时返回0。用于识别"技能堆砌"。
func SkillDensity(resumeSkills, jdSkills []string) float64 {
	resumeSet := uniqueSet(resumeSkills)
	if len(resumeSet) == 0 {
		return 0.0
	}

	jdSet := uniqueSet(jdSkills)
	relevant := 0
	for skill := range resumeSet {
		if _, ok := jdSet[skill]; ok {
			relevant++
		}
	}

	return float64(relevant) / float64(len(resumeSet))
}

// Match 对一份简历和一个JD做完整匹配，返回不可变的结果快照。
// 相似度基于双方原始全文；覆盖率/密度基于技能集合
// (简历技能 对 JD全部技能)；缺失技能只看JD必备技能。
func (m *Matcher) Match(ctx context.Context, resume *types.Resume, jd *types.JobDescription) (*types.MatchResult, error) {
	if resume == nil || jd == nil {
		return nil, fmt.Errorf("简历和岗位描述都不能为空")
	}

	similarity, err := m.Similarity(ctx, resume.RawText, jd.RawText)
	if err != nil {
		return nil, err
	}

	jdAllSkills := jd.AllSkills()
	coverage := SkillCoverage(resume.Skills, jdAllSkills)
	density := SkillDensity(resume.Skills, jdAllSkills)

	matching := intersect(resume.Skills, jdAllSkills)
	missing := subtract(jd.RequiredSkills, resume.Skills)

	explanation := generateExplanation(similarity, coverage, density, matching, missing)

	m.logger.Printf("匹配完成: 相似度 %.3f, 覆盖率 %.3f, 密度 %.3f", similarity, coverage, density)

	return &types.MatchResult{
		SimilarityScore: similarity,
		SkillCoverage:   coverage,
		SkillDensity:    density,
		MatchingSkills:  matching,
		MissingSkills:   missing,
		Explanation:     explanation,
	}, nil
}

// Rank 把多份简历按加权分从高到低排序。
// 加权分 = coverage*W_cov + similarity*W_sim + density*W_den。
// 使用稳定排序：加权分相同的简历保持输入相对顺序。
func (m *Matcher) Rank(ctx context.Context, resumes []*types.Resume, jd *types.JobDescription, weights *Weights) ([]types.RankedResume, error) {
	w := m.weights
	if weights != nil {
		w = *weights
	}

	type scored struct {
		ranked types.RankedResume
		score  float64
	}

	results := make([]scored, 0, len(resumes))
	for _, resume := range resumes {
		result, err := m.Match(ctx, resume, jd)
		if err != nil {
			return nil, fmt.Errorf("排序中匹配失败: %w", err)
		}

		weightedScore := w.Coverage*result.SkillCoverage +
			w.Similarity*result.SimilarityScore +
			w.Density*result.SkillDensity

		results = append(results, scored{
			ranked: types.RankedResume{Resume: resume, Result: result},
			score:  weightedScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	ranked := make([]types.RankedResume, len(results))
	for i, r := range results {
		ranked[i] = r.ranked
	}
	return ranked, nil
}

// Stats 返回匹配器的静态信息
func (m *Matcher) Stats() map[string]interface{} {
	return map[string]interface{}{
		"embedding_dimensions": m.embedder.GetDimensions(),
		"weights": map[string]float64{
			"coverage":   m.weights.Coverage,
			"similarity": m.weights.Similarity,
			"density":    m.weights.Density,
		},
	}
}

// uniqueSet 把技能列表转为去重集合
func uniqueSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// intersect 返回a与b的交集，去重且按标签排序
func intersect(a, b []string) []string {
	bSet := uniqueSet(b)
	seen := make(map[string]struct{})
	var result []string
	for _, item := range a {
		if _, inB := bSet[item]; !inB {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	sort.Strings(result)
	return result
}

// subtract 返回a中不在b里的元素，去重且按标签排序
func subtract(a, b []string) []string {
	bSet := uniqueSet(b)
	seen := make(map[string]struct{})
	var result []string
	for _, item := range a {
		if _, inB := bSet[item]; inB {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	sort.Strings(result)
	return result
}
