package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取PDF文本
type EinoPDFTextExtractor struct {
	parser *pdf.PDFParser
	logger *log.Logger
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = logger
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器。
// 配置为不按页分割，整个文档作为单段连续文本返回。
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false, // 整份PDF合并为一个字符串
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser: p,
		logger: log.New(os.Stderr, "[PDF解析器] ", log.LstdFlags),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件路径提取纯文本
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	startTime := time.Now()
	e.logger.Printf("开始处理PDF文件: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	text, err := e.ExtractFromReader(ctx, file, filePath)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("PDF处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", err
	}

	e.logger.Printf("PDF处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, nil
}

// ExtractFromReader 从 io.Reader 中提取PDF文本，uri仅用于日志
func (e *EinoPDFTextExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	// PDF解析可能很慢，限制单次提取时长
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", uri, err)
	}

	if len(docs) == 0 {
		return "", nil
	}

	// ToPages=false时解析器只返回一个文档
	return docs[0].Content, nil
}
