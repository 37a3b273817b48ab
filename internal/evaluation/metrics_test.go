package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecisionAtK(t *testing.T) {
	tests := []struct {
		name       string
		relevances []bool
		k          int
		expected   float64
	}{
		{"前2取1", []bool{true, false, true, true}, 2, 0.5},
		{"全相关", []bool{true, true, true}, 3, 1.0},
		{"全不相关", []bool{false, false}, 2, 0.0},
		{"k超出长度时截断", []bool{true, false}, 10, 0.5},
		{"空列表", nil, 3, 0.0},
		{"k为0", []bool{true}, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PrecisionAtK(tt.relevances, tt.k), 1e-9)
		})
	}
}

func TestAveragePrecision(t *testing.T) {
	// (1/1 + 2/3) / 2 = 0.8333...
	got := AveragePrecision([]bool{true, false, true})
	assert.InDelta(t, 0.8333, got, 1e-4)

	assert.Equal(t, 0.0, AveragePrecision([]bool{false, false, false}))
	assert.Equal(t, 0.0, AveragePrecision(nil))
	assert.Equal(t, 1.0, AveragePrecision([]bool{true, true}))
}

func TestMeanAveragePrecision(t *testing.T) {
	queries := [][]bool{
		{true, false, true}, // AP = 0.8333
		{false, true},       // AP = 0.5
	}
	got := MeanAveragePrecision(queries)
	assert.InDelta(t, (0.83333333+0.5)/2, got, 1e-6)

	assert.Equal(t, 0.0, MeanAveragePrecision(nil))
}

func TestNormalizedDCG(t *testing.T) {
	// 已是理想降序时nDCG=1
	assert.InDelta(t, 1.0, NormalizedDCG([]float64{3, 2, 1}, 3), 1e-9)

	// 全零分时理想DCG为0
	assert.Equal(t, 0.0, NormalizedDCG([]float64{0, 0, 0}, 3))
	assert.Equal(t, 0.0, NormalizedDCG(nil, 5))

	// 逆序: DCG = 1/log2(2) + 2/log2(3) + 3/log2(4)
	// 理想: 3/log2(2) + 2/log2(3) + 1/log2(4)
	dcg := 1.0 + 2.0/math.Log2(3) + 3.0/2.0
	ideal := 3.0 + 2.0/math.Log2(3) + 1.0/2.0
	assert.InDelta(t, dcg/ideal, NormalizedDCG([]float64{1, 2, 3}, 3), 1e-9)

	// k截断只看前k个实际位置，但理想序列同样取前k
	assert.InDelta(t, 1.0, NormalizedDCG([]float64{3, 2, 1}, 2), 1e-9)
}

func TestMetricsAccumulator(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0, m.QueryCount())

	// 空累加器所有指标为0
	empty := m.ComputeAll(5)
	assert.Equal(t, 0.0, empty["P@5"])
	assert.Equal(t, 0.0, empty["MAP"])
	assert.Equal(t, 0.0, empty["nDCG@5"])

	m.AddQueryResult([]bool{true, false, true, true}, []float64{3, 0, 2, 1})
	m.AddQueryResult([]bool{false, true}, []float64{0, 1})
	assert.Equal(t, 2, m.QueryCount())

	metrics := m.ComputeAll(2)

	// P@2: (0.5 + 0.5) / 2
	assert.InDelta(t, 0.5, metrics["P@2"], 1e-9)
	// MAP: ((1 + 2/3 + 3/4)/3 + 0.5) / 2
	expectedMAP := ((1.0+2.0/3.0+0.75)/3.0 + 0.5) / 2.0
	assert.InDelta(t, expectedMAP, metrics["MAP"], 1e-9)
	assert.Contains(t, metrics, "nDCG@2")
}

func TestMetricsAddCopiesInput(t *testing.T) {
	m := NewMetrics()
	relevances := []bool{true, false}
	scores := []float64{1, 0}
	m.AddQueryResult(relevances, scores)

	// 外部修改不应影响已积累的状态
	relevances[1] = true
	scores[1] = 5

	metrics := m.ComputeAll(2)
	assert.InDelta(t, 0.5, metrics["P@2"], 1e-9)
}
