package handler

import (
	"context"
	"fmt"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"

	"github.com/google/uuid"
)

// MatchHandler 匹配处理器，负责简历与岗位的同步/异步匹配
type MatchHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	matcher *matcher.Matcher
}

// NewMatchHandler 创建匹配处理器
func NewMatchHandler(cfg *config.Config, storage *storage.Storage, m *matcher.Matcher) *MatchHandler {
	return &MatchHandler{
		cfg:     cfg,
		storage: storage,
		matcher: m,
	}
}

// rankWeights 排序权重取自配置
func (h *MatchHandler) rankWeights() matcher.Weights {
	return matcher.Weights{
		Coverage:   h.cfg.Matcher.CoverageWeight,
		Similarity: h.cfg.Matcher.SimilarityWeight,
		Density:    h.cfg.Matcher.DensityWeight,
	}
}

// loadResume 从MySQL+MinIO还原完整的简历对象
func (h *MatchHandler) loadResume(ctx context.Context, resumeID string) (*types.Resume, error) {
	record, err := h.storage.MySQL.GetResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("查询简历 %s 失败: %w", resumeID, err)
	}

	rawText, err := h.storage.MinIO.GetParsedText(ctx, record.ParsedTextPathOSS)
	if err != nil {
		return nil, fmt.Errorf("读取简历 %s 解析文本失败: %w", resumeID, err)
	}

	skills, err := models.JSONToStringSlice(record.SkillsJSON)
	if err != nil {
		return nil, fmt.Errorf("反序列化简历 %s 技能失败: %w", resumeID, err)
	}

	resume := &types.Resume{
		RawText: rawText,
		Name:    record.CandidateName,
		Email:   record.Email,
		Phone:   record.Phone,
		Skills:  skills,
	}
	if record.ExperienceYears != nil {
		resume.ExperienceYears = *record.ExperienceYears
	}
	return resume, nil
}

// loadJob 从MySQL还原完整的岗位描述对象。JD全文直接存在数据库中。
func (h *MatchHandler) loadJob(ctx context.Context, jobID string) (*types.JobDescription, error) {
	record, err := h.storage.MySQL.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("查询岗位 %s 失败: %w", jobID, err)
	}

	required, err := models.JSONToStringSlice(record.RequiredSkillsJSON)
	if err != nil {
		return nil, fmt.Errorf("反序列化岗位 %s 必备技能失败: %w", jobID, err)
	}
	preferred, err := models.JSONToStringSlice(record.PreferredSkillsJSON)
	if err != nil {
		return nil, fmt.Errorf("反序列化岗位 %s 加分技能失败: %w", jobID, err)
	}

	return &types.JobDescription{
		RawText:         record.JobDescriptionText,
		Title:           record.JobTitle,
		Company:         record.Company,
		RequiredSkills:  required,
		PreferredSkills: preferred,
	}, nil
}

// HandleMatch 同步匹配一份简历和一个岗位，结果落库
func (h *MatchHandler) HandleMatch(ctx context.Context, resumeID, jobID string) (*types.MatchResult, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}

	resume, err := h.loadResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	jd, err := h.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := h.matcher.MatchWithIDs(ctx, resume, jd, resumeID, jobID)
	if err != nil {
		return nil, err
	}

	if err := h.persistMatch(ctx, result); err != nil {
		// 匹配本身已成功，落库失败只记录
		logger.Warn().Err(err).Str("resume_id", resumeID).Str("job_id", jobID).Msg("保存匹配快照失败")
	}
	h.countMatch(ctx)

	return result, nil
}

// RankedItem 排序接口返回的一项
type RankedItem struct {
	ResumeID      string             `json:"resume_id"`
	CandidateName string             `json:"candidate_name,omitempty"`
	WeightedScore float64            `json:"weighted_score"`
	Result        *types.MatchResult `json:"result"`
}

// HandleRank 把一组简历(为空时取全库)按对某岗位的加权分排序。
// 每份简历的匹配快照同时落库。
func (h *MatchHandler) HandleRank(ctx context.Context, jobID string, resumeIDs []string) ([]RankedItem, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}

	jd, err := h.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if len(resumeIDs) == 0 {
		records, err := h.storage.MySQL.ListResumes(ctx, 200, 0)
		if err != nil {
			return nil, fmt.Errorf("查询简历列表失败: %w", err)
		}
		for _, record := range records {
			resumeIDs = append(resumeIDs, record.ResumeID)
		}
	}

	resumes := make([]*types.Resume, 0, len(resumeIDs))
	for _, resumeID := range resumeIDs {
		resume, err := h.loadResume(ctx, resumeID)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}

	// 带ID排序走JD向量缓存, 整批JD全文至多向量化一次
	weights := h.rankWeights()
	ranked, err := h.matcher.RankWithIDs(ctx, resumes, resumeIDs, jd, jobID, &weights)
	if err != nil {
		return nil, err
	}

	items := make([]RankedItem, 0, len(ranked))
	for _, entry := range ranked {
		weightedScore := weights.Coverage*entry.Result.SkillCoverage +
			weights.Similarity*entry.Result.SimilarityScore +
			weights.Density*entry.Result.SkillDensity

		if err := h.persistMatch(ctx, entry.Result); err != nil {
			logger.Warn().Err(err).Str("resume_id", entry.Result.ResumeID).Str("job_id", jobID).Msg("保存匹配快照失败")
		}
		h.countMatch(ctx)

		items = append(items, RankedItem{
			ResumeID:      entry.Result.ResumeID,
			CandidateName: entry.Resume.Name,
			WeightedScore: weightedScore,
			Result:        entry.Result,
		})
	}

	return items, nil
}

// HandleMatcherStats 返回匹配器的配置信息，汇入stats接口
func (h *MatchHandler) HandleMatcherStats() map[string]interface{} {
	if h.matcher == nil {
		return nil
	}
	return h.matcher.Stats()
}

// BatchMatchResponse 异步批量匹配请求的受理响应
type BatchMatchResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// HandleBatchMatchRequest 受理异步批量匹配: 发布消息后立即返回
func (h *MatchHandler) HandleBatchMatchRequest(ctx context.Context, jobID string, resumeIDs []string) (*BatchMatchResponse, error) {
	if h.storage == nil || h.storage.RabbitMQ == nil {
		return nil, fmt.Errorf("消息队列未初始化")
	}

	// 先确认岗位存在，避免无效消息进入队列
	if _, err := h.storage.MySQL.GetJob(ctx, jobID); err != nil {
		return nil, fmt.Errorf("查询岗位 %s 失败: %w", jobID, err)
	}

	msg := &storage.MatchRequestMessage{
		RequestID:   uuid.NewString(),
		JobID:       jobID,
		ResumeIDs:   resumeIDs,
		RequestedAt: time.Now(),
	}
	if err := h.storage.RabbitMQ.PublishMatchRequest(ctx, msg); err != nil {
		return nil, fmt.Errorf("发布批量匹配请求失败: %w", err)
	}

	logger.Info().
		Str("request_id", msg.RequestID).
		Str("job_id", jobID).
		Int("resumes", len(resumeIDs)).
		Msg("批量匹配请求已受理")

	return &BatchMatchResponse{RequestID: msg.RequestID, Status: "ACCEPTED"}, nil
}

// StartMatchRequestConsumer 启动批量匹配消费者。
// 返回的停止通道由调用方在退出时close，消费者随之优雅停止。
func (h *MatchHandler) StartMatchRequestConsumer(ctx context.Context) (chan<- struct{}, error) {
	if h.storage == nil || h.storage.RabbitMQ == nil {
		return nil, fmt.Errorf("消息队列未初始化")
	}

	if err := h.storage.RabbitMQ.SetupMatchTopology(); err != nil {
		return nil, fmt.Errorf("声明匹配队列拓扑失败: %w", err)
	}

	stop, err := h.storage.RabbitMQ.StartMatchRequestConsumer(func(msg *storage.MatchRequestMessage) bool {
		if err := h.processBatchMatch(ctx, msg); err != nil {
			logger.Error().
				Err(err).
				Str("request_id", msg.RequestID).
				Str("job_id", msg.JobID).
				Msg("处理批量匹配请求失败")
			return false
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("启动批量匹配消费者失败: %w", err)
	}
	return stop, nil
}

// processBatchMatch 消费端执行批量匹配，逐份简历独立处理
func (h *MatchHandler) processBatchMatch(ctx context.Context, msg *storage.MatchRequestMessage) error {
	jd, err := h.loadJob(ctx, msg.JobID)
	if err != nil {
		return err
	}

	resumeIDs := msg.ResumeIDs
	if len(resumeIDs) == 0 {
		records, err := h.storage.MySQL.ListResumes(ctx, 200, 0)
		if err != nil {
			return fmt.Errorf("查询简历列表失败: %w", err)
		}
		for _, record := range records {
			resumeIDs = append(resumeIDs, record.ResumeID)
		}
	}

	var failures int
	for _, resumeID := range resumeIDs {
		resume, err := h.loadResume(ctx, resumeID)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("加载简历失败，跳过")
			failures++
			continue
		}

		result, err := h.matcher.MatchWithIDs(ctx, resume, jd, resumeID, msg.JobID)
		if err != nil {
			// Embedding失败对整批都是致命的，让消息重试
			return fmt.Errorf("匹配简历 %s 失败: %w", resumeID, err)
		}

		if err := h.persistMatch(ctx, result); err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("保存匹配快照失败")
			failures++
		}
		h.countMatch(ctx)
	}

	logger.Info().
		Str("request_id", msg.RequestID).
		Str("job_id", msg.JobID).
		Int("total", len(resumeIDs)).
		Int("failures", failures).
		Msg("批量匹配完成")
	return nil
}

// persistMatch 把匹配结果写入快照表
func (h *MatchHandler) persistMatch(ctx context.Context, result *types.MatchResult) error {
	matchingJSON, err := models.StringSliceToJSON(result.MatchingSkills)
	if err != nil {
		return fmt.Errorf("序列化匹配技能失败: %w", err)
	}
	missingJSON, err := models.StringSliceToJSON(result.MissingSkills)
	if err != nil {
		return fmt.Errorf("序列化缺失技能失败: %w", err)
	}

	weights := h.rankWeights()
	record := &models.MatchRecord{
		ResumeID:        result.ResumeID,
		JobID:           result.JobID,
		SimilarityScore: result.SimilarityScore,
		SkillCoverage:   result.SkillCoverage,
		SkillDensity:    result.SkillDensity,
		WeightedScore: weights.Coverage*result.SkillCoverage +
			weights.Similarity*result.SimilarityScore +
			weights.Density*result.SkillDensity,
		MatchingSkillsJSON: matchingJSON,
		MissingSkillsJSON:  missingJSON,
		Explanation:        result.Explanation,
	}
	return h.storage.MySQL.SaveMatch(ctx, record)
}

// countMatch 累计匹配次数，Redis不可用时静默跳过
func (h *MatchHandler) countMatch(ctx context.Context) {
	if h.storage == nil || h.storage.Redis == nil {
		return
	}
	if _, err := h.storage.Redis.IncrMatchCount(ctx); err != nil {
		logger.Warn().Err(err).Msg("累计匹配次数失败")
	}
}

// HandleListMatches 按加权分列出某岗位的历史匹配快照
func (h *MatchHandler) HandleListMatches(ctx context.Context, jobID string, limit int) ([]RankedItem, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}

	records, err := h.storage.MySQL.ListMatchesByJob(ctx, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询匹配快照失败: %w", err)
	}

	items := make([]RankedItem, 0, len(records))
	for _, record := range records {
		matching, err := models.JSONToStringSlice(record.MatchingSkillsJSON)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", record.ResumeID).Msg("反序列化匹配技能失败")
		}
		missing, err := models.JSONToStringSlice(record.MissingSkillsJSON)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", record.ResumeID).Msg("反序列化缺失技能失败")
		}

		items = append(items, RankedItem{
			ResumeID:      record.ResumeID,
			WeightedScore: record.WeightedScore,
			Result: &types.MatchResult{
				ResumeID:        record.ResumeID,
				JobID:           record.JobID,
				SimilarityScore: record.SimilarityScore,
				SkillCoverage:   record.SkillCoverage,
				SkillDensity:    record.SkillDensity,
				MatchingSkills:  matching,
				MissingSkills:   missing,
				Explanation:     record.Explanation,
			},
		})
	}
	return items, nil
}
