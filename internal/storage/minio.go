package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"resume-match-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadOriginalFile 上传原始文档，返回对象键
	UploadOriginalFile(ctx context.Context, docType, docID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// UploadParsedText 上传解析后的纯文本，返回对象键
	UploadParsedText(ctx context.Context, docType, docID string, text string) (string, error)

	// GetParsedText 读取解析后的纯文本
	GetParsedText(ctx context.Context, objectKey string) (string, error)

	// DownloadOriginalFile 下载原始文档
	DownloadOriginalFile(ctx context.Context, objectKey string) ([]byte, error)

	// GetPresignedURL 获取原始文档的预签名下载URL
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteOriginalFile 删除原始文档
	DeleteOriginalFile(ctx context.Context, objectKey string) error

	// DeleteParsedText 删除解析后的纯文本
	DeleteParsedText(ctx context.Context, objectKey string) error
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能，原始文档与解析文本分桶存放
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         *log.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing client with endpoint: %s, originalsBucket: %s, parsedTextBucket: %s",
		cfg.Endpoint, cfg.OriginalsBucket, cfg.ParsedTextBucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	originalBucket := cfg.OriginalsBucket
	if originalBucket == "" {
		originalBucket = "originals"
	}
	parsedBucket := cfg.ParsedTextBucket
	if parsedBucket == "" {
		parsedBucket = "parsed-text"
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: originalBucket,
		parsedBucket:   parsedBucket,
		logger:         logger,
	}

	if err := m.ensureBucketExists(originalBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始文档存储桶 %s 存在失败: %w", originalBucket, err)
	}
	if err := m.ensureBucketExists(parsedBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保解析文本存储桶 %s 存在失败: %w", parsedBucket, err)
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在，不存在则创建
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, creating...", bucketName)
		if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
	}
	return nil
}

// originalObjectKey 原始文档对象键，例如 resume/<id>/original.pdf
func originalObjectKey(docType, docID, fileExt string) string {
	return fmt.Sprintf("%s/%s/original%s", docType, docID, fileExt)
}

// parsedObjectKey 解析文本对象键，例如 resume/<id>/parsed_text.txt
func parsedObjectKey(docType, docID string) string {
	return fmt.Sprintf("%s/%s/parsed_text.txt", docType, docID)
}

// UploadOriginalFile 上传原始文档到originalsBucket，返回对象键
func (m *MinIO) UploadOriginalFile(ctx context.Context, docType, docID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectKey := originalObjectKey(docType, docID, fileExt)
	contentType := getContentType(fileExt)

	_, err := m.client.PutObject(ctx, m.originalBucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传 %s 到存储桶 %s 失败: %w", objectKey, m.originalBucket, err)
	}

	m.logger.Printf("[MinIO] Uploaded %s to bucket %s (%d bytes)", objectKey, m.originalBucket, fileSize)
	return objectKey, nil
}

// UploadParsedText 上传解析后的纯文本到parsedTextBucket
func (m *MinIO) UploadParsedText(ctx context.Context, docType, docID string, text string) (string, error) {
	objectKey := parsedObjectKey(docType, docID)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectKey,
		strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("上传解析文本 %s 到存储桶 %s 失败: %w", objectKey, m.parsedBucket, err)
	}
	return objectKey, nil
}

// GetParsedText 从parsedTextBucket读取解析后的纯文本
func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.readObject(ctx, m.parsedBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DownloadOriginalFile 从originalsBucket下载原始文档
func (m *MinIO) DownloadOriginalFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.readObject(ctx, m.originalBucket, objectKey)
}

// readObject 读取指定桶中对象的全部内容
func (m *MinIO) readObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// Stat确认对象存在且可访问，GetObject本身是惰性的
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 内容失败: %w", bucketName, objectKey, err)
	}
	return buf.Bytes(), nil
}

// GetPresignedURL 获取原始文档的预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	u, err := m.client.PresignedGetObject(ctx, m.originalBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return u.String(), nil
}

// DeleteOriginalFile 删除原始文档
func (m *MinIO) DeleteOriginalFile(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.originalBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除对象 %s/%s 失败: %w", m.originalBucket, objectKey, err)
	}
	return nil
}

// DeleteParsedText 删除解析后的纯文本
func (m *MinIO) DeleteParsedText(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.parsedBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除对象 %s/%s 失败: %w", m.parsedBucket, objectKey, err)
	}
	return nil
}

// getContentType 按扩展名推断Content-Type
func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt":
		return "text/plain"
	case ".rtf":
		return "application/rtf"
	default:
		return "application/octet-stream"
	}
}
