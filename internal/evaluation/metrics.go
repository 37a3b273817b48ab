package evaluation

import (
	"fmt"
	"math"
	"sort"
)

// PrecisionAtK 计算Precision@k：前k个结果中相关项的比例。
// k大于列表长度时按列表长度截断；k<=0或列表为空时返回0。
func PrecisionAtK(relevances []bool, k int) float64 {
	if k <= 0 || len(relevances) == 0 {
		return 0.0
	}
	if len(relevances) < k {
		k = len(relevances)
	}

	hits := 0
	for _, relevant := range relevances[:k] {
		if relevant {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// AveragePrecision 计算平均精度：只在相关位置上取
// (累计相关数/位置序号)的均值，无相关项时为0。
func AveragePrecision(relevances []bool) float64 {
	var precisions []float64
	relevantCount := 0

	for i, relevant := range relevances {
		if relevant {
			relevantCount++
			precisions = append(precisions, float64(relevantCount)/float64(i+1))
		}
	}

	if len(precisions) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, p := range precisions {
		sum += p
	}
	return sum / float64(len(precisions))
}

// MeanAveragePrecision 计算MAP：各查询AveragePrecision的算术平均，
// 无查询时为0。
func MeanAveragePrecision(allRelevances [][]bool) float64 {
	if len(allRelevances) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, relevances := range allRelevances {
		sum += AveragePrecision(relevances)
	}
	return sum / float64(len(allRelevances))
}

// NormalizedDCG 计算nDCG@k = DCG(实际顺序前k) / DCG(理想降序前k)。
// DCG = Σ score_i / log2(i+2)，i为0起始位置。
// 理想DCG为0（全零分或空列表）时返回0。k<=0时取全列表。
func NormalizedDCG(scores []float64, k int) float64 {
	if k <= 0 || k > len(scores) {
		k = len(scores)
	}

	actual := scores[:k]

	ideal := make([]float64, len(scores))
	copy(ideal, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	ideal = ideal[:k]

	dcg := discountedCumulativeGain(actual)
	idealDCG := discountedCumulativeGain(ideal)

	if idealDCG <= 0 {
		return 0.0
	}
	return dcg / idealDCG
}

func discountedCumulativeGain(scores []float64) float64 {
	dcg := 0.0
	for i, score := range scores {
		dcg += score / math.Log2(float64(i)+2)
	}
	return dcg
}

// Metrics 按查询累积相关性数据的评估累加器。
// 只追加，聚合指标是对已积累状态的纯函数。
// 不支持并发追加，单次评估任务内串行使用。
type Metrics struct {
	allRelevances      [][]bool
	allRelevanceScores [][]float64
}

// NewMetrics 创建空的评估累加器
func NewMetrics() *Metrics {
	return &Metrics{}
}

// AddQueryResult 追加一个查询的相关性数据：
// relevances为排序后各位置是否相关，scores为对应的分级相关性分数。
func (m *Metrics) AddQueryResult(relevances []bool, scores []float64) {
	relCopy := make([]bool, len(relevances))
	copy(relCopy, relevances)
	scoreCopy := make([]float64, len(scores))
	copy(scoreCopy, scores)

	m.allRelevances = append(m.allRelevances, relCopy)
	m.allRelevanceScores = append(m.allRelevanceScores, scoreCopy)
}

// QueryCount 返回已积累的查询数
func (m *Metrics) QueryCount() int {
	return len(m.allRelevances)
}

// ComputeAll 汇总计算 P@k / MAP / nDCG@k。
// P@k和nDCG@k是各查询指标的均值，无查询时各项均为0。
func (m *Metrics) ComputeAll(k int) map[string]float64 {
	metrics := make(map[string]float64)

	pAtK := 0.0
	for _, relevances := range m.allRelevances {
		pAtK += PrecisionAtK(relevances, k)
	}
	if len(m.allRelevances) > 0 {
		pAtK /= float64(len(m.allRelevances))
	}
	metrics[fmt.Sprintf("P@%d", k)] = pAtK

	metrics["MAP"] = MeanAveragePrecision(m.allRelevances)

	ndcg := 0.0
	for _, scores := range m.allRelevanceScores {
		ndcg += NormalizedDCG(scores, k)
	}
	if len(m.allRelevanceScores) > 0 {
		ndcg /= float64(len(m.allRelevanceScores))
	}
	metrics[fmt.Sprintf("nDCG@%d", k)] = ndcg

	return metrics
}
