package matcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"resume-match-go/internal/config"

	"github.com/cloudwego/eino/components/embedding"
)

// OpenAIEmbedder 通过OpenAI兼容的HTTP接口获取文本向量，
// 实现 TextEmbedder 接口。服务端返回的向量已做L2归一化。
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewOpenAIEmbedder 创建Embedding客户端
func NewOpenAIEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	if embeddingCfg.BaseURL == "" {
		return nil, fmt.Errorf("Embedding BaseURL不能为空")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-v3"
	}

	timeout := time.Duration(embeddingCfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: embeddingCfg.Dimensions,
		baseURL:    embeddingCfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.New(os.Stderr, "[OpenAIEmbedder] ", log.LstdFlags|log.Lshortfile),
	}, nil
}

// GetDimensions 返回配置的向量维度
func (e *OpenAIEmbedder) GetDimensions() int {
	return e.dimensions
}

// openAIEmbeddingRequest OpenAI兼容的Embedding请求体
type openAIEmbeddingRequest struct {
	Input      interface{} `json:"input"` // string 或 []string
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions,omitempty"`
}

// openAIEmbeddingResponse OpenAI兼容的Embedding响应体
type openAIEmbeddingResponse struct {
	Object string             `json:"object"`
	Data   []openAIDataEntry  `json:"data"`
	Model  string             `json:"model"`
	Usage  openAIUsage        `json:"usage"`
	Error  *openAIErrorDetail `json:"error,omitempty"`
}

type openAIDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type openAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本批量转换为向量，实现 TextEmbedder 接口
func (e *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := e.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	var inputBody interface{}
	if len(texts) == 1 {
		inputBody = texts[0]
	} else {
		inputBody = texts
	}

	reqBody := openAIEmbeddingRequest{
		Input: inputBody,
		Model: effectiveModel,
	}
	if e.dimensions > 0 {
		reqBody.Dimensions = e.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化Embedding请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送Embedding请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Embedding响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openAIEmbeddingResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("Embedding API调用失败, 状态码: %d, 类型: %s, 错误: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("Embedding API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsedResp openAIEmbeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("解析Embedding响应JSON失败: %w", err)
	}

	// 部分服务在200响应里携带API级错误
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("Embedding API返回错误: 类型=%s, 消息='%s'", parsedResp.Error.Type, parsedResp.Error.Message)
	}

	if len(parsedResp.Data) != len(texts) {
		return nil, fmt.Errorf("Embedding响应条目数不匹配: 期望 %d, 实际 %d", len(texts), len(parsedResp.Data))
	}

	// 按index归位，服务端不保证Data有序
	outputEmbeddings := make([][]float64, len(texts))
	for _, entry := range parsedResp.Data {
		if entry.Index < 0 || entry.Index >= len(texts) {
			return nil, fmt.Errorf("Embedding响应index越界: %d", entry.Index)
		}
		outputEmbeddings[entry.Index] = entry.Embedding
	}

	e.logger.Printf("成功嵌入 %d 段文本, 维度: %d, 消耗token: %d",
		len(texts), firstEmbeddingDim(outputEmbeddings), parsedResp.Usage.TotalTokens)

	return outputEmbeddings, nil
}

// firstEmbeddingDim 安全取第一个向量的维度，用于日志
func firstEmbeddingDim(embeddings [][]float64) int {
	if len(embeddings) > 0 && len(embeddings[0]) > 0 {
		return len(embeddings[0])
	}
	return 0
}
