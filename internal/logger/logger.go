package logger // 日志组件，基于zerolog封装

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 全局日志实例，其他包可直接使用
	Logger = log.Logger
)

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // 日志级别: debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // 输出格式: json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否记录调用位置(文件:行号)
}

// Init 按配置初始化全局日志系统
func Init(config Config) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		level = zerolog.InfoLevel // 无法解析时默认Info
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: config.TimeFormat,
			NoColor:    false,
		}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	contextLogger := zerolog.New(output).
		Level(level).
		With().
		Timestamp()

	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	// 同时替换包内全局实例与zerolog自身的全局logger
	Logger = contextLogger.Logger()
	log.Logger = Logger
}

// Debug 开始一条调试级别日志
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别日志
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别日志
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别日志
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命级别日志，记录后进程退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中取出日志实例（如果存在）
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext 将全局日志实例放入上下文并返回新上下文
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
