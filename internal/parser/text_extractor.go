package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// 文本提取失败的基础错误类型
var (
	ErrFileNotFound      = errors.New("文件不存在")
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
)

// 支持的文件扩展名集合。
// .doc 在集合内但提取时单独拒绝：需要先转换为docx或pdf。
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
	".rtf":  true,
}

// RTF标记清理用的正则
var (
	rtfControlRe = regexp.MustCompile(`\\[a-z0-9-]+\d?`)
	rtfBraceRe   = regexp.MustCompile(`[{}]`)
)

// TextExtractor 从多种格式的文档中提取纯文本。
// PDF通过Eino解析器处理，DOCX通过docx库处理，TXT/RTF直接读取。
type TextExtractor struct {
	pdf    *EinoPDFTextExtractor
	logger *log.Logger
}

// TextExtractorOption 提取器的配置选项
type TextExtractorOption func(*TextExtractor)

// WithLogger 配置自定义日志记录器
func WithLogger(logger *log.Logger) TextExtractorOption {
	return func(t *TextExtractor) {
		t.logger = logger
	}
}

// NewTextExtractor 创建文本提取器
func NewTextExtractor(ctx context.Context, options ...TextExtractorOption) (*TextExtractor, error) {
	pdfExtractor, err := NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化PDF提取器失败: %w", err)
	}

	t := &TextExtractor{
		pdf:    pdfExtractor,
		logger: log.New(io.Discard, "", 0),
	}

	for _, option := range options {
		option(t)
	}
	t.pdf.logger = t.logger

	return t, nil
}

// ValidateFile 校验文件存在且扩展名受支持
func ValidateFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return fmt.Errorf("访问文件失败 %s: %w", filePath, err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %s (支持: .pdf .docx .doc .txt .rtf)", ErrUnsupportedFormat, ext)
	}
	return nil
}

// TextFromFile 从支持的文件类型中提取文本内容。
// 文件不存在返回ErrFileNotFound，类型不支持返回ErrUnsupportedFormat。
func (t *TextExtractor) TextFromFile(ctx context.Context, filePath string) (string, error) {
	if err := ValidateFile(filePath); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	t.logger.Printf("开始提取文本: %s (类型: %s)", filePath, ext)

	switch ext {
	case ".pdf":
		return t.pdf.ExtractFromFile(ctx, filePath)

	case ".docx":
		return extractDocxText(filePath)

	case ".doc":
		// 旧版doc需要额外工具链，先转换为docx或pdf
		return "", fmt.Errorf("%w: .doc 暂不支持，请先转换为 docx 或 pdf", ErrUnsupportedFormat)

	case ".txt":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("读取文本文件失败 %s: %w", filePath, err)
		}
		return string(data), nil

	case ".rtf":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("读取RTF文件失败 %s: %w", filePath, err)
		}
		return stripRTFMarkup(string(data)), nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// extractDocxText 用docx库提取DOCX文档的正文
func extractDocxText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("读取DOCX文件失败 %s: %w", filePath, err)
	}

	r, err := docx.ReadDocxFromMemory(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("解析DOCX失败 %s: %w", filePath, err)
	}
	defer r.Close()

	return r.Editable().GetContent(), nil
}

// stripRTFMarkup 粗粒度地剥离RTF控制符和分组花括号
func stripRTFMarkup(content string) string {
	content = rtfControlRe.ReplaceAllString(content, "")
	content = rtfBraceRe.ReplaceAllString(content, "")
	return content
}
