package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resume-match-go/internal/config"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound Redis键不存在
var ErrNotFound = redis.Nil

// Redis键格式
const (
	// keyJobVector JD向量缓存，HASH: vector + model_version
	keyJobVector = "match:job_vector:%s"
	// keyDocumentMD5Set 已上传文档的内容MD5集合，用于查重
	keyDocumentMD5Set = "match:document_md5_set"
	// keyMatchCounter 累计匹配次数计数器
	keyMatchCounter = "match:stats:total_matches"
)

// Redis 键值存储，缓存JD向量并维护文档查重集合
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// jobVectorExpireDuration JD向量缓存过期时间
func (r *Redis) jobVectorExpireDuration() time.Duration {
	hours := r.config.JobVectorExpireHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// SetJobVector 将JD向量和模型版本存入Redis HASH。
// 用HASH把向量和模型版本放在同一个key下，便于整体过期。
func (r *Redis) SetJobVector(ctx context.Context, jobID string, vector []float64, modelVersion string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	cacheKey := fmt.Sprintf(keyJobVector, jobID)

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("序列化向量失败: %w", err)
	}

	pipe := r.Client.Pipeline()
	pipe.HSet(ctx, cacheKey, "vector", vectorJSON)
	pipe.HSet(ctx, cacheKey, "model_version", modelVersion)
	pipe.Expire(ctx, cacheKey, r.jobVectorExpireDuration())

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置JD向量缓存失败: %w", err)
	}
	return nil
}

// GetJobVector 从Redis HASH中获取JD向量和模型版本。
// 缓存未命中时返回包装了 ErrNotFound 的错误。
func (r *Redis) GetJobVector(ctx context.Context, jobID string) ([]float64, string, error) {
	if r.Client == nil {
		return nil, "", fmt.Errorf("redis client is not initialized")
	}

	cacheKey := fmt.Sprintf(keyJobVector, jobID)

	vals, err := r.Client.HMGet(ctx, cacheKey, "vector", "model_version").Result()
	if err != nil {
		return nil, "", err
	}
	if len(vals) < 2 || vals[0] == nil {
		return nil, "", fmt.Errorf("未找到JD向量缓存, jobID=%s: %w", jobID, ErrNotFound)
	}

	vectorJSON, ok := vals[0].(string)
	if !ok || vectorJSON == "" {
		return nil, "", fmt.Errorf("向量缓存格式错误")
	}
	var vector []float64
	if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
		return nil, "", fmt.Errorf("反序列化向量失败: %w", err)
	}

	modelVersion := ""
	if vals[1] != nil {
		if modelVersion, ok = vals[1].(string); !ok {
			return vector, "", fmt.Errorf("向量模型版本格式错误")
		}
	}

	return vector, modelVersion, nil
}

// AddDocumentMD5 记录已上传文档的内容MD5，用于后续查重
func (r *Redis) AddDocumentMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	pipe := r.Client.Pipeline()
	pipe.SAdd(ctx, keyDocumentMD5Set, md5Hex)
	// ExpireNX: 仅在key尚无过期时间时设置
	pipe.ExpireNX(ctx, keyDocumentMD5Set, 365*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// CheckDocumentMD5Exists 检查文档内容MD5是否已见过
func (r *Redis) CheckDocumentMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SIsMember(ctx, keyDocumentMD5Set, md5Hex).Result()
}

// IncrMatchCount 累计匹配次数加一，返回新值
func (r *Redis) IncrMatchCount(ctx context.Context) (int64, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Incr(ctx, keyMatchCounter).Result()
}

// GetMatchCount 读取累计匹配次数，key不存在时返回0
func (r *Redis) GetMatchCount(ctx context.Context) (int64, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("redis client is not initialized")
	}
	count, err := r.Client.Get(ctx, keyMatchCounter).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
