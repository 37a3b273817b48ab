package matcher

import (
	"context"
	"errors"
	"testing"

	"resume-match-go/internal/types"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder 以文本->向量映射模拟Embedding服务
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if v, ok := s.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float64{1, 0, 0}
		}
	}
	return out, nil
}

func (s *stubEmbedder) GetDimensions() int {
	return 3
}

func TestNewMatcher_NilEmbedder(t *testing.T) {
	_, err := NewMatcher(nil)
	require.Error(t, err)
}

func TestSimilarity_EmptyTextSkipsEmbedding(t *testing.T) {
	stub := &stubEmbedder{}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		textA string
		textB string
	}{
		{"两边都为空", "", ""},
		{"左侧为空", "", "some job description"},
		{"右侧只有空白", "some resume text", "   \n\t "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score, err := m.Similarity(context.Background(), tc.textA, tc.textB)
			require.NoError(t, err)
			assert.Equal(t, 0.0, score)
		})
	}

	// 空文本不应触发任何Embedding调用
	assert.Equal(t, 0, stub.calls)
}

func TestSimilarity_IdenticalText(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"golang backend developer": {0.6, 0.8, 0},
	}}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	score, err := m.Similarity(context.Background(), "golang backend developer", "golang backend developer")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestSimilarity_OrthogonalVectors(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"text a": {1, 0, 0},
		"text b": {0, 1, 0},
	}}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	score, err := m.Similarity(context.Background(), "text a", "text b")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestSimilarity_EmbedderErrorPropagates(t *testing.T) {
	wantErr := errors.New("embedding service unavailable")
	m, err := NewMatcher(&stubEmbedder{err: wantErr})
	require.NoError(t, err)

	_, err = m.Similarity(context.Background(), "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestSkillCoverage(t *testing.T) {
	testCases := []struct {
		name         string
		resumeSkills []string
		jdSkills     []string
		expected     float64
	}{
		{"典型场景", []string{"python", "sql", "machine learning"}, []string{"python", "sql", "docker"}, 2.0 / 3.0},
		{"JD技能为空", []string{"python"}, nil, 0.0},
		{"简历技能为空", nil, []string{"python"}, 0.0},
		{"完全覆盖", []string{"python", "sql"}, []string{"python", "sql"}, 1.0},
		{"简历技能重复不重复计数", []string{"python", "python"}, []string{"python", "sql"}, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, SkillCoverage(tc.resumeSkills, tc.jdSkills), 1e-9)
		})
	}
}

func TestSkillDensity(t *testing.T) {
	testCases := []struct {
		name         string
		resumeSkills []string
		jdSkills     []string
		expected     float64
	}{
		{"典型场景", []string{"python", "sql", "machine learning"}, []string{"python", "sql", "docker"}, 2.0 / 3.0},
		{"简历技能为空", nil, []string{"python"}, 0.0},
		{"技能堆砌", []string{"a", "b", "c", "python"}, []string{"python"}, 0.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, SkillDensity(tc.resumeSkills, tc.jdSkills), 1e-9)
		})
	}
}

func TestMatch_TypicalScenario(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"resume text": {0.8, 0.6, 0},
		"jd text":     {0.8, 0.6, 0},
	}}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	resume := &types.Resume{
		RawText: "resume text",
		Skills:  []string{"python", "sql", "machine learning"},
	}
	jd := &types.JobDescription{
		RawText:        "jd text",
		RequiredSkills: []string{"python", "sql", "docker"},
	}

	result, err := m.Match(context.Background(), resume, jd)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 1.0, result.SimilarityScore, 1e-9)
	assert.InDelta(t, 2.0/3.0, result.SkillCoverage, 1e-9)
	assert.InDelta(t, 2.0/3.0, result.SkillDensity, 1e-9)
	assert.Equal(t, []string{"python", "sql"}, result.MatchingSkills)
	assert.Equal(t, []string{"docker"}, result.MissingSkills)
	assert.Contains(t, result.Explanation, "Strong skills in: python, sql.")
	assert.Contains(t, result.Explanation, "Consider developing skills in: docker.")

	// 匹配与缺失集合不相交
	for _, missing := range result.MissingSkills {
		assert.NotContains(t, result.MatchingSkills, missing)
	}
}

func TestMatch_PreferredSkillsCountTowardCoverage(t *testing.T) {
	m, err := NewMatcher(&stubEmbedder{})
	require.NoError(t, err)

	resume := &types.Resume{
		RawText: "r",
		Skills:  []string{"python", "kubernetes"},
	}
	jd := &types.JobDescription{
		RawText:         "j",
		RequiredSkills:  []string{"python"},
		PreferredSkills: []string{"kubernetes", "terraform"},
	}

	result, err := m.Match(context.Background(), resume, jd)
	require.NoError(t, err)

	// 覆盖率基于必备+加分技能，缺失只看必备技能
	assert.InDelta(t, 2.0/3.0, result.SkillCoverage, 1e-9)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, []string{"kubernetes", "python"}, result.MatchingSkills)
}

func TestMatch_EmbedderErrorPropagates(t *testing.T) {
	wantErr := errors.New("上游服务超时")
	m, err := NewMatcher(&stubEmbedder{err: wantErr})
	require.NoError(t, err)

	resume := &types.Resume{RawText: "r", Skills: []string{"python"}}
	jd := &types.JobDescription{RawText: "j", RequiredSkills: []string{"python"}}

	_, err = m.Match(context.Background(), resume, jd)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestMatch_NilInput(t *testing.T) {
	m, err := NewMatcher(&stubEmbedder{})
	require.NoError(t, err)

	_, err = m.Match(context.Background(), nil, &types.JobDescription{})
	require.Error(t, err)

	_, err = m.Match(context.Background(), &types.Resume{}, nil)
	require.Error(t, err)
}

func TestRank_OrdersByWeightedScore(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"strong resume": {1, 0, 0},
		"weak resume":   {0, 1, 0},
		"the jd":        {1, 0, 0},
	}}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	strong := &types.Resume{Name: "strong", RawText: "strong resume", Skills: []string{"python", "sql"}}
	weak := &types.Resume{Name: "weak", RawText: "weak resume", Skills: []string{"cooking"}}
	jd := &types.JobDescription{RawText: "the jd", RequiredSkills: []string{"python", "sql"}}

	ranked, err := m.Rank(context.Background(), []*types.Resume{weak, strong}, jd, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "strong", ranked[0].Resume.Name)
	assert.Equal(t, "weak", ranked[1].Resume.Name)
}

func TestRank_StableOnEqualScores(t *testing.T) {
	m, err := NewMatcher(&stubEmbedder{})
	require.NoError(t, err)

	// 三份技能和文本完全相同的简历，加权分相等，应保持输入顺序
	makeResume := func(name string) *types.Resume {
		return &types.Resume{Name: name, RawText: "same text", Skills: []string{"python"}}
	}
	resumes := []*types.Resume{makeResume("first"), makeResume("second"), makeResume("third")}
	jd := &types.JobDescription{RawText: "same text", RequiredSkills: []string{"python"}}

	ranked, err := m.Rank(context.Background(), resumes, jd, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "first", ranked[0].Resume.Name)
	assert.Equal(t, "second", ranked[1].Resume.Name)
	assert.Equal(t, "third", ranked[2].Resume.Name)
}

func TestRank_CustomWeights(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"similar resume": {1, 0, 0},
		"skilled resume": {0, 1, 0},
		"jd":             {1, 0, 0},
	}}
	m, err := NewMatcher(stub)
	require.NoError(t, err)

	// similar: 相似度1但无覆盖; skilled: 相似度0但覆盖1
	similar := &types.Resume{Name: "similar", RawText: "similar resume", Skills: []string{"cooking"}}
	skilled := &types.Resume{Name: "skilled", RawText: "skilled resume", Skills: []string{"python"}}
	jd := &types.JobDescription{RawText: "jd", RequiredSkills: []string{"python"}}

	// 只看相似度时 similar 应排第一
	onlySimilarity := &Weights{Similarity: 1.0}
	ranked, err := m.Rank(context.Background(), []*types.Resume{skilled, similar}, jd, onlySimilarity)
	require.NoError(t, err)
	assert.Equal(t, "similar", ranked[0].Resume.Name)

	// 只看覆盖率时 skilled 应排第一
	onlyCoverage := &Weights{Coverage: 1.0}
	ranked, err = m.Rank(context.Background(), []*types.Resume{similar, skilled}, jd, onlyCoverage)
	require.NoError(t, err)
	assert.Equal(t, "skilled", ranked[0].Resume.Name)
}

func TestRank_EmptyInput(t *testing.T) {
	m, err := NewMatcher(&stubEmbedder{})
	require.NoError(t, err)

	ranked, err := m.Rank(context.Background(), nil, &types.JobDescription{RawText: "j"}, nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestCosineSimilarity_EdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}
