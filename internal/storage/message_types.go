package storage

import "time"

// MatchRequestMessage 批量匹配请求消息。
// API层发布到match_events交换机，消费者取出后对指定岗位
// 批量执行简历匹配并落库。
type MatchRequestMessage struct {
	// RequestID 本次批量匹配请求的唯一标识
	RequestID string `json:"request_id"`

	// JobID 目标岗位
	JobID string `json:"job_id"`

	// ResumeIDs 待匹配的简历。为空表示匹配库中全部简历
	ResumeIDs []string `json:"resume_ids,omitempty"`

	// RequestedAt 请求发布时间
	RequestedAt time.Time `json:"requested_at"`
}
