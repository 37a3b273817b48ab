package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"

	"github.com/google/uuid"
)

// DocumentHandler 文档处理器，负责简历和岗位描述的上传入库流程
type DocumentHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	pipeline *processor.Pipeline
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(cfg *config.Config, storage *storage.Storage, pipeline *processor.Pipeline) *DocumentHandler {
	return &DocumentHandler{
		cfg:      cfg,
		storage:  storage,
		pipeline: pipeline,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	ResumeID        string   `json:"resume_id"`
	Status          string   `json:"status"`
	CandidateName   string   `json:"candidate_name,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	SuggestedSkills []string `json:"suggested_skills,omitempty"`
}

// JobUploadResponse 岗位描述上传响应
type JobUploadResponse struct {
	JobID          string   `json:"job_id"`
	Status         string   `json:"status"`
	Title          string   `json:"title,omitempty"`
	Company        string   `json:"company,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// JobUploadOptions 岗位上传的可选覆盖项
type JobUploadOptions struct {
	Title          string
	Company        string
	RequiredSkills []string
}

// 上传文件大小上限
const maxUploadBytes = 20 << 20

// HandleResumeUpload 处理简历上传: 查重、解析、对象存储、落库
func (h *DocumentHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, fileSize int64, filename string) (*ResumeUploadResponse, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}
	if fileSize > maxUploadBytes {
		return nil, fmt.Errorf("上传文件过大: %d 字节，上限 %d 字节", fileSize, maxUploadBytes)
	}

	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if len(fileBytes) == 0 {
		return nil, fmt.Errorf("上传文件为空")
	}
	fileMD5Hex := utils.CalculateMD5(fileBytes)

	if resp := h.findDuplicateResume(ctx, fileMD5Hex, filename); resp != nil {
		return resp, nil
	}

	resumeID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}

	resume, err := h.processUploadedDocument(ctx, fileBytes, ext, h.pipeline.ProcessResume)
	if err != nil {
		return nil, err
	}

	// 原始文档与解析文本入对象存储
	originalKey, err := h.storage.MinIO.UploadOriginalFile(ctx, "resume", resumeID, ext, strings.NewReader(string(fileBytes)), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("上传简历原始文件失败: %w", err)
	}
	parsedKey, err := h.storage.MinIO.UploadParsedText(ctx, "resume", resumeID, resume.RawText)
	if err != nil {
		return nil, fmt.Errorf("上传简历解析文本失败: %w", err)
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.AddDocumentMD5(ctx, fileMD5Hex); err != nil {
			logger.Warn().Err(err).Str("md5", fileMD5Hex).Msg("记录文档MD5失败，查重可能失效")
		}
	}

	record, err := buildResumeRecord(resumeID, filename, originalKey, parsedKey, fileMD5Hex, resume)
	if err != nil {
		return nil, err
	}
	if err := h.storage.MySQL.SaveResume(ctx, record); err != nil {
		return nil, fmt.Errorf("保存简历记录失败: %w", err)
	}

	logger.Info().
		Str("resume_id", resumeID).
		Str("filename", filename).
		Int("skills", len(resume.Skills)).
		Msg("简历处理完成")

	return &ResumeUploadResponse{
		ResumeID:        resumeID,
		Status:          "PARSED",
		CandidateName:   resume.Name,
		Skills:          resume.Skills,
		SuggestedSkills: resume.SuggestedSkills,
	}, nil
}

// HandleJobUpload 处理岗位描述上传
func (h *DocumentHandler) HandleJobUpload(ctx context.Context, reader io.Reader, fileSize int64, filename string, opts JobUploadOptions) (*JobUploadResponse, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}
	if fileSize > maxUploadBytes {
		return nil, fmt.Errorf("上传文件过大: %d 字节，上限 %d 字节", fileSize, maxUploadBytes)
	}

	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if len(fileBytes) == 0 {
		return nil, fmt.Errorf("上传文件为空")
	}

	jobID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".txt"
	}

	jd, err := h.processUploadedJobDescription(ctx, fileBytes, ext, opts.RequiredSkills)
	if err != nil {
		return nil, err
	}
	if opts.Title != "" {
		jd.Title = opts.Title
	}
	if opts.Company != "" {
		jd.Company = opts.Company
	}

	originalKey, err := h.storage.MinIO.UploadOriginalFile(ctx, "jd", jobID, ext, strings.NewReader(string(fileBytes)), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("上传岗位描述原始文件失败: %w", err)
	}
	if _, err := h.storage.MinIO.UploadParsedText(ctx, "jd", jobID, jd.RawText); err != nil {
		return nil, fmt.Errorf("上传岗位描述解析文本失败: %w", err)
	}

	record, err := buildJobRecord(jobID, originalKey, jd)
	if err != nil {
		return nil, err
	}
	if err := h.storage.MySQL.SaveJob(ctx, record); err != nil {
		return nil, fmt.Errorf("保存岗位记录失败: %w", err)
	}

	logger.Info().
		Str("job_id", jobID).
		Str("title", jd.Title).
		Int("required_skills", len(jd.RequiredSkills)).
		Msg("岗位描述处理完成")

	return &JobUploadResponse{
		JobID:          jobID,
		Status:         "PARSED",
		Title:          jd.Title,
		Company:        jd.Company,
		RequiredSkills: jd.RequiredSkills,
	}, nil
}

// findDuplicateResume 文件级查重: 优先查Redis的MD5集合，
// Redis不可用或查询失败时回退到MySQL的file_md5索引。重复时返回跳过响应。
func (h *DocumentHandler) findDuplicateResume(ctx context.Context, fileMD5Hex, filename string) *ResumeUploadResponse {
	if h.storage.Redis != nil {
		exists, err := h.storage.Redis.CheckDocumentMD5Exists(ctx, fileMD5Hex)
		if err == nil {
			if exists {
				logger.Info().Str("md5", fileMD5Hex).Str("filename", filename).Msg("检测到重复文档，跳过处理")
				return &ResumeUploadResponse{Status: "DUPLICATE_FILE_SKIPPED"}
			}
			return nil
		}
		logger.Warn().Err(err).Str("md5", fileMD5Hex).Msg("查询文档MD5集合失败，回退到数据库查重")
	}

	existing, err := h.storage.MySQL.FindResumeByFileMD5(ctx, fileMD5Hex)
	if err != nil {
		logger.Warn().Err(err).Str("md5", fileMD5Hex).Msg("数据库查重失败，跳过查重")
		return nil
	}
	if existing != nil {
		logger.Info().Str("md5", fileMD5Hex).Str("resume_id", existing.ResumeID).Msg("检测到重复文档，跳过处理")
		return &ResumeUploadResponse{ResumeID: existing.ResumeID, Status: "DUPLICATE_FILE_SKIPPED"}
	}
	return nil
}

// processUploadedDocument 把上传内容写入临时文件后交给处理管道。
// 文本提取器按文件路径工作，所以这里必须落一次盘。
func (h *DocumentHandler) processUploadedDocument(ctx context.Context, fileBytes []byte, ext string, process func(ctx context.Context, path string) (*types.Resume, error)) (*types.Resume, error) {
	tmpFile, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(fileBytes); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("关闭临时文件失败: %w", err)
	}

	return process(ctx, tmpPath)
}

// processUploadedJobDescription 岗位描述版的临时文件处理
func (h *DocumentHandler) processUploadedJobDescription(ctx context.Context, fileBytes []byte, ext string, requiredSkills []string) (*types.JobDescription, error) {
	tmpFile, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(fileBytes); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("关闭临时文件失败: %w", err)
	}

	return h.pipeline.ProcessJobDescription(ctx, tmpPath, requiredSkills)
}

// buildResumeRecord 把处理结果组装为数据库记录
func buildResumeRecord(resumeID, filename, originalKey, parsedKey, fileMD5 string, resume *types.Resume) (*models.ResumeRecord, error) {
	skillsJSON, err := models.StringSliceToJSON(resume.Skills)
	if err != nil {
		return nil, fmt.Errorf("序列化技能列表失败: %w", err)
	}
	byCategoryJSON, err := models.StringMapToJSON(resume.SkillsByCategory)
	if err != nil {
		return nil, fmt.Errorf("序列化分类技能失败: %w", err)
	}
	suggestedJSON, err := models.StringSliceToJSON(resume.SuggestedSkills)
	if err != nil {
		return nil, fmt.Errorf("序列化推荐技能失败: %w", err)
	}

	record := &models.ResumeRecord{
		ResumeID:            resumeID,
		CandidateName:       resume.Name,
		Email:               resume.Email,
		Phone:               resume.Phone,
		OriginalFilename:    filename,
		OriginalFilePathOSS: originalKey,
		ParsedTextPathOSS:   parsedKey,
		FileMD5:             fileMD5,
		SkillsJSON:          skillsJSON,
		SkillsByCategory:    byCategoryJSON,
		SuggestedSkillsJSON: suggestedJSON,
		ProcessingStatus:    "PARSED",
	}
	if resume.ExperienceYears > 0 {
		record.ExperienceYears = utils.Float64Ptr(resume.ExperienceYears)
	}
	return record, nil
}

// buildJobRecord 把岗位处理结果组装为数据库记录
func buildJobRecord(jobID, originalKey string, jd *types.JobDescription) (*models.JobRecord, error) {
	requiredJSON, err := models.StringSliceToJSON(jd.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("序列化必备技能失败: %w", err)
	}
	preferredJSON, err := models.StringSliceToJSON(jd.PreferredSkills)
	if err != nil {
		return nil, fmt.Errorf("序列化加分技能失败: %w", err)
	}
	byCategoryJSON, err := models.StringMapToJSON(jd.SkillsByCategory)
	if err != nil {
		return nil, fmt.Errorf("序列化分类技能失败: %w", err)
	}

	return &models.JobRecord{
		JobID:               jobID,
		JobTitle:            jd.Title,
		Company:             jd.Company,
		JobDescriptionText:  jd.RawText,
		OriginalFilePathOSS: originalKey,
		RequiredSkillsJSON:  requiredJSON,
		PreferredSkillsJSON: preferredJSON,
		SkillsByCategory:    byCategoryJSON,
		Status:              "ACTIVE",
	}, nil
}

// ResumeSummary 列表接口返回的简历摘要
type ResumeSummary struct {
	ResumeID        string   `json:"resume_id"`
	CandidateName   string   `json:"candidate_name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears float64  `json:"experience_years,omitempty"`
	Status          string   `json:"status"`
}

// JobSummary 列表接口返回的岗位摘要
type JobSummary struct {
	JobID          string   `json:"job_id"`
	Title          string   `json:"title,omitempty"`
	Company        string   `json:"company,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Status         string   `json:"status"`
}

// HandleListResumes 分页列出已入库的简历
func (h *DocumentHandler) HandleListResumes(ctx context.Context, limit, offset int) ([]ResumeSummary, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}
	records, err := h.storage.MySQL.ListResumes(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("查询简历列表失败: %w", err)
	}

	summaries := make([]ResumeSummary, 0, len(records))
	for _, record := range records {
		skills, err := models.JSONToStringSlice(record.SkillsJSON)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", record.ResumeID).Msg("反序列化技能列表失败")
		}
		summary := ResumeSummary{
			ResumeID:      record.ResumeID,
			CandidateName: record.CandidateName,
			Email:         record.Email,
			Skills:        skills,
			Status:        record.ProcessingStatus,
		}
		if record.ExperienceYears != nil {
			summary.ExperienceYears = *record.ExperienceYears
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// HandleListJobs 分页列出已入库的岗位
func (h *DocumentHandler) HandleListJobs(ctx context.Context, limit, offset int) ([]JobSummary, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}
	records, err := h.storage.MySQL.ListJobs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}

	summaries := make([]JobSummary, 0, len(records))
	for _, record := range records {
		required, err := models.JSONToStringSlice(record.RequiredSkillsJSON)
		if err != nil {
			logger.Warn().Err(err).Str("job_id", record.JobID).Msg("反序列化必备技能失败")
		}
		summaries = append(summaries, JobSummary{
			JobID:          record.JobID,
			Title:          record.JobTitle,
			Company:        record.Company,
			RequiredSkills: required,
			Status:         record.Status,
		})
	}
	return summaries, nil
}

// OriginalDocument 原始文档下载结果
type OriginalDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HandleResumeDownload 下载简历原始文件内容
func (h *DocumentHandler) HandleResumeDownload(ctx context.Context, resumeID string) (*OriginalDocument, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("存储组件未初始化")
	}

	record, err := h.storage.MySQL.GetResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("查询简历 %s 失败: %w", resumeID, err)
	}

	data, err := h.storage.MinIO.DownloadOriginalFile(ctx, record.OriginalFilePathOSS)
	if err != nil {
		return nil, fmt.Errorf("下载简历 %s 原始文件失败: %w", resumeID, err)
	}

	return &OriginalDocument{
		Filename:    record.OriginalFilename,
		ContentType: contentTypeForFilename(record.OriginalFilename),
		Data:        data,
	}, nil
}

// HandleResumeDownloadURL 生成简历原始文件的预签名下载URL
func (h *DocumentHandler) HandleResumeDownloadURL(ctx context.Context, resumeID string, expiry time.Duration) (string, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return "", fmt.Errorf("存储组件未初始化")
	}

	record, err := h.storage.MySQL.GetResume(ctx, resumeID)
	if err != nil {
		return "", fmt.Errorf("查询简历 %s 失败: %w", resumeID, err)
	}

	url, err := h.storage.MinIO.GetPresignedURL(ctx, record.OriginalFilePathOSS, expiry)
	if err != nil {
		return "", fmt.Errorf("生成简历 %s 下载链接失败: %w", resumeID, err)
	}
	return url, nil
}

// HandleResumeDelete 删除简历: 数据库记录、匹配快照及对象存储中的文件
func (h *DocumentHandler) HandleResumeDelete(ctx context.Context, resumeID string) error {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return fmt.Errorf("存储组件未初始化")
	}

	record, err := h.storage.MySQL.GetResume(ctx, resumeID)
	if err != nil {
		return fmt.Errorf("查询简历 %s 失败: %w", resumeID, err)
	}

	if err := h.storage.MySQL.DeleteResume(ctx, resumeID); err != nil {
		return fmt.Errorf("删除简历 %s 记录失败: %w", resumeID, err)
	}

	// 对象删除失败只记录，数据库记录已删，留下的对象可由清理任务回收
	if record.OriginalFilePathOSS != "" {
		if err := h.storage.MinIO.DeleteOriginalFile(ctx, record.OriginalFilePathOSS); err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("删除原始文件失败")
		}
	}
	if record.ParsedTextPathOSS != "" {
		if err := h.storage.MinIO.DeleteParsedText(ctx, record.ParsedTextPathOSS); err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("删除解析文本失败")
		}
	}

	logger.Info().Str("resume_id", resumeID).Msg("简历已删除")
	return nil
}

// contentTypeForFilename 按文件名后缀推断下载Content-Type
func contentTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
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

// HandleStats 汇总系统统计信息
func (h *DocumentHandler) HandleStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{}

	if h.pipeline != nil {
		stats["pipeline"] = h.pipeline.Stats()
	}

	if h.storage != nil && h.storage.MySQL != nil {
		resumes, jobs, matches, err := h.storage.MySQL.Counts(ctx)
		if err != nil {
			return nil, fmt.Errorf("统计数据库记录数失败: %w", err)
		}
		stats["resumes"] = resumes
		stats["jobs"] = jobs
		stats["match_snapshots"] = matches
	}

	if h.storage != nil && h.storage.Redis != nil {
		total, err := h.storage.Redis.GetMatchCount(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("读取累计匹配次数失败")
		} else {
			stats["total_match_calls"] = total
		}
	}

	return stats, nil
}
