package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrTextExtractionFailed = errors.New("提取文档文本失败")
	ErrEmptyContent         = errors.New("文档内容为空")
	ErrOntologyMissing      = errors.New("技能本体未加载")
)

// ProcessError 包含详细上下文的处理错误
type ProcessError struct {
	Path    string // 被处理的文件路径
	Op      string // 出错的操作
	BaseErr error  // 底层错误
	Detail  string // 额外说明
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Path)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 以支持对底层错误的比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// newProcessError 错误构造函数
func newProcessError(path, op string, baseErr error, detail string) error {
	return &ProcessError{
		Path:    path,
		Op:      op,
		BaseErr: baseErr,
		Detail:  detail,
	}
}
