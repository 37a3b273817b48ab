package processor

import "log"

// Option Pipeline的配置选项
type Option func(*Pipeline)

// WithSuggestionLimit 设置技能提示的最大条数
func WithSuggestionLimit(limit int) Option {
	return func(p *Pipeline) {
		if limit > 0 {
			p.suggestionLimit = limit
		}
	}
}

// WithPipelineLogger 设置自定义日志记录器
func WithPipelineLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}
