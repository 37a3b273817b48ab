package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"resume-match-go/internal/evaluation"

	"github.com/spf13/pflag"
)

// labeledQuery 离线评估输入中的一条记录：某个岗位的排序结果加人工相关性标注
type labeledQuery struct {
	JobID   string         `json:"job_id"`
	Results []labeledMatch `json:"results"`
}

type labeledMatch struct {
	ResumeID string  `json:"resume_id"`
	Score    float64 `json:"score"`
	Relevant bool    `json:"relevant"`
}

func main() {
	var (
		inputPath string
		topK      int
	)
	pflag.StringVarP(&inputPath, "input", "i", "", "标注结果文件路径(JSON)")
	pflag.IntVarP(&topK, "top-k", "k", 5, "Precision@K / NDCG@K 的K值")
	pflag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "用法: evaluate -i <labeled_results.json> [-k 5]")
		os.Exit(2)
	}

	queries, err := loadQueries(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取标注文件失败: %v\n", err)
		os.Exit(1)
	}
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "标注文件中没有查询记录")
		os.Exit(1)
	}

	metrics := evaluation.NewMetrics()
	for _, q := range queries {
		// 按模型打分降序排列后再计算排序指标
		sort.SliceStable(q.Results, func(i, j int) bool {
			return q.Results[i].Score > q.Results[j].Score
		})

		relevances := make([]bool, len(q.Results))
		scores := make([]float64, len(q.Results))
		for i, r := range q.Results {
			relevances[i] = r.Relevant
			scores[i] = r.Score
		}
		metrics.AddQueryResult(relevances, scores)
	}

	results := metrics.ComputeAll(topK)

	fmt.Printf("评估完成: %d 个岗位查询, K=%d\n", metrics.QueryCount(), topK)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-20s %.4f\n", name, results[name])
	}
}

func loadQueries(path string) ([]labeledQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var queries []labeledQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %w", err)
	}
	return queries, nil
}
