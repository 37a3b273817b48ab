package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/ontology"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	initLogger(configPath)

	// 1. 加载配置文件
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置文件失败")
	}

	// 2. 初始化存储管理器
	ctx := context.Background()
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	// 3. 初始化业务组件
	documentHandler, matchHandler, err := initializeHandlers(ctx, cfg, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化业务处理器失败")
	}
	logger.Info().Msg("业务处理器初始化成功")

	// 4. 启动批量匹配消费者
	var stopConsumer chan<- struct{}
	if storageManager.RabbitMQ != nil {
		stopConsumer, err = matchHandler.StartMatchRequestConsumer(context.Background())
		if err != nil {
			logger.Fatal().Err(err).Msg("启动批量匹配消费者失败")
		}
	} else {
		logger.Warn().Msg("RabbitMQ未配置，异步批量匹配不可用")
	}

	// 5. 创建HTTP服务器
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
	)
	glog.SetLogger(hertzadapter.From(logger.Logger))

	router.RegisterRoutes(h, documentHandler, matchHandler)

	// 6. 启动HTTP服务器
	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器已启动")

	// 7. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	// 先停消费者，避免关闭连接时消息处理到一半
	if stopConsumer != nil {
		close(stopConsumer)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("优雅退出完成")
}

// 初始化日志系统
func initLogger(configPath string) {
	isProduction := os.Getenv("ENV") == "production"

	cfg, err := config.LoadConfig(configPath)

	logConfig := logger.Config{
		Level:        "debug",
		Format:       "pretty",
		TimeFormat:   time.RFC3339,
		ReportCaller: true,
	}
	if err == nil && cfg != nil {
		logConfig.Level = cfg.Logger.Level
		logConfig.Format = cfg.Logger.Format
		logConfig.TimeFormat = cfg.Logger.TimeFormat
		logConfig.ReportCaller = cfg.Logger.ReportCaller
	} else if isProduction {
		logConfig.Level = "info"
		logConfig.Format = "json"
		logConfig.ReportCaller = false
	}

	logger.Init(logConfig)

	logger.Logger = logger.Logger.With().
		Str("app", "resume-match").
		Logger()
}

func initializeHandlers(ctx context.Context, cfg *config.Config, storageManager *storage.Storage) (*handler.DocumentHandler, *handler.MatchHandler, error) {
	if storageManager == nil {
		return nil, nil, fmt.Errorf("存储管理器未初始化")
	}
	if storageManager.MySQL == nil {
		return nil, nil, fmt.Errorf("MySQL实例未初始化")
	}
	if storageManager.MinIO == nil {
		return nil, nil, fmt.Errorf("MinIO实例未初始化")
	}

	// 技能本体
	ont, err := ontology.Load(cfg.Ontology.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("加载技能本体失败: %w", err)
	}

	// 文档解析管道
	extractor, err := parser.NewTextExtractor(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化文本提取器失败: %w", err)
	}
	pipeline, err := processor.NewPipeline(ont, extractor)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化处理管道失败: %w", err)
	}

	// 匹配引擎
	embedder, err := matcher.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化Embedding客户端失败: %w", err)
	}

	matcherOpts := []matcher.MatcherOption{
		matcher.WithWeights(matcher.Weights{
			Coverage:   cfg.Matcher.CoverageWeight,
			Similarity: cfg.Matcher.SimilarityWeight,
			Density:    cfg.Matcher.DensityWeight,
		}),
	}
	if storageManager.Redis != nil {
		matcherOpts = append(matcherOpts, matcher.WithVectorCache(storageManager.Redis, cfg.Embedding.Model))
	}
	m, err := matcher.NewMatcher(embedder, matcherOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化匹配引擎失败: %w", err)
	}

	return handler.NewDocumentHandler(cfg, storageManager, pipeline),
		handler.NewMatchHandler(cfg, storageManager, m),
		nil
}
