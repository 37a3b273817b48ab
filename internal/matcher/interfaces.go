package matcher

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"
)

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)。
// 实现方返回的向量假定已做L2归一化。
type TextEmbedder interface {
	// EmbedStrings 将一批文本转换为向量表示
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)

	// GetDimensions 返回嵌入向量的维度
	GetDimensions() int
}
