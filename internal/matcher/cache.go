package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"resume-match-go/internal/types"
)

// VectorCache JD向量缓存接口，由Redis适配器实现
type VectorCache interface {
	GetJobVector(ctx context.Context, jobID string) ([]float64, string, error)
	SetJobVector(ctx context.Context, jobID string, vector []float64, modelVersion string) error
}

// WithVectorCache 启用JD向量缓存。
// 同一岗位被多份简历匹配时，JD全文只需向量化一次。
func WithVectorCache(cache VectorCache, modelVersion string) MatcherOption {
	return func(m *Matcher) {
		m.vectorCache = cache
		m.cacheModelVersion = modelVersion
	}
}

// MatchWithIDs 带标识的匹配。结果会携带ResumeID/JobID，
// 且在配置了向量缓存时复用缓存的JD向量。
func (m *Matcher) MatchWithIDs(ctx context.Context, resume *types.Resume, jd *types.JobDescription, resumeID, jobID string) (*types.MatchResult, error) {
	if m.vectorCache == nil || jobID == "" || resume == nil || jd == nil ||
		strings.TrimSpace(resume.RawText) == "" || strings.TrimSpace(jd.RawText) == "" {
		result, err := m.Match(ctx, resume, jd)
		if err != nil {
			return nil, err
		}
		result.ResumeID = resumeID
		result.JobID = jobID
		return result, nil
	}

	jdVector, err := m.cachedJobVector(ctx, jd.RawText, jobID)
	if err != nil {
		return nil, err
	}

	resumeVectors, err := m.embedder.EmbedStrings(ctx, []string{resume.RawText})
	if err != nil {
		return nil, err
	}
	if len(resumeVectors) != 1 || len(resumeVectors[0]) == 0 {
		return nil, errEmbeddingShape()
	}

	similarity := cosineSimilarity(resumeVectors[0], jdVector)
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	jdAllSkills := jd.AllSkills()
	coverage := SkillCoverage(resume.Skills, jdAllSkills)
	density := SkillDensity(resume.Skills, jdAllSkills)
	matching := intersect(resume.Skills, jdAllSkills)
	missing := subtract(jd.RequiredSkills, resume.Skills)

	m.logger.Printf("匹配完成(缓存JD向量): 相似度 %.3f, 覆盖率 %.3f, 密度 %.3f", similarity, coverage, density)

	return &types.MatchResult{
		ResumeID:        resumeID,
		JobID:           jobID,
		SimilarityScore: similarity,
		SkillCoverage:   coverage,
		SkillDensity:    density,
		MatchingSkills:  matching,
		MissingSkills:   missing,
		Explanation:     generateExplanation(similarity, coverage, density, matching, missing),
	}, nil
}

// RankWithIDs 带标识的排序。resumeIDs与resumes一一对应，
// 每份简历走MatchWithIDs，同一JD向量整批至多向量化一次。
func (m *Matcher) RankWithIDs(ctx context.Context, resumes []*types.Resume, resumeIDs []string, jd *types.JobDescription, jobID string, weights *Weights) ([]types.RankedResume, error) {
	if len(resumes) != len(resumeIDs) {
		return nil, fmt.Errorf("简历数量 %d 与ID数量 %d 不一致", len(resumes), len(resumeIDs))
	}

	w := m.weights
	if weights != nil {
		w = *weights
	}

	type scored struct {
		ranked types.RankedResume
		score  float64
	}

	results := make([]scored, 0, len(resumes))
	for i, resume := range resumes {
		result, err := m.MatchWithIDs(ctx, resume, jd, resumeIDs[i], jobID)
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

// cachedJobVector 取JD向量，缓存未命中或模型版本不符时重新向量化并回填
func (m *Matcher) cachedJobVector(ctx context.Context, jdText, jobID string) ([]float64, error) {
	vector, modelVersion, err := m.vectorCache.GetJobVector(ctx, jobID)
	if err == nil && len(vector) > 0 && modelVersion == m.cacheModelVersion {
		return vector, nil
	}

	vectors, embErr := m.embedder.EmbedStrings(ctx, []string{jdText})
	if embErr != nil {
		return nil, embErr
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, errEmbeddingShape()
	}

	// 回填失败不影响本次匹配
	if setErr := m.vectorCache.SetJobVector(ctx, jobID, vectors[0], m.cacheModelVersion); setErr != nil {
		m.logger.Printf("回填JD向量缓存失败, jobID=%s: %v", jobID, setErr)
	}

	return vectors[0], nil
}
