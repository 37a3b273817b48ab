package processor

import (
	"context"
)

// TextSource 文档文本提取接口。
// 由parser.TextExtractor实现，测试中可用桩替换。
type TextSource interface {
	// TextFromFile 从指定路径的文档中提取纯文本
	TextFromFile(ctx context.Context, filePath string) (string, error)
}
