package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"resume-match-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, documentHandler *handler.DocumentHandler, matchHandler *handler.MatchHandler) {
	api := h.Group("/api/v1")

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := documentHandler.HandleResumeUpload(c, file, fileHeader.Size, fileHeader.Filename)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// JD 上传支持两种形式：文件上传，或者表单直接给全文
	api.POST("/jd/upload", func(c context.Context, ctx *app.RequestContext) {
		opts := handler.JobUploadOptions{
			Title:   ctx.PostForm("title"),
			Company: ctx.PostForm("company"),
		}
		if raw := ctx.PostForm("required_skills"); raw != "" {
			opts.RequiredSkills = splitCommaList(raw)
		}

		fileHeader, err := ctx.FormFile("file")
		if err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
				return
			}
			defer file.Close()

			resp, err := documentHandler.HandleJobUpload(c, file, fileHeader.Size, fileHeader.Filename, opts)
			if err != nil {
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusOK, resp)
			return
		}

		text := ctx.PostForm("text")
		if text == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要 file 或 text 之一"})
			return
		}
		resp, err := documentHandler.HandleJobUpload(c, strings.NewReader(text), int64(len(text)), "inline.txt", opts)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.POST("/match", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			ResumeID string `json:"resume_id"`
			JobID    string `json:"job_id"`
		}
		if err := ctx.BindJSON(&req); err != nil || req.ResumeID == "" || req.JobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要 resume_id 和 job_id"})
			return
		}

		result, err := matchHandler.HandleMatch(c, req.ResumeID, req.JobID)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/rank", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			JobID     string   `json:"job_id"`
			ResumeIDs []string `json:"resume_ids"`
		}
		if err := ctx.BindJSON(&req); err != nil || req.JobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要 job_id"})
			return
		}

		items, err := matchHandler.HandleRank(c, req.JobID, req.ResumeIDs)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"job_id": req.JobID, "ranked": items})
	})

	api.POST("/match/batch", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			JobID     string   `json:"job_id"`
			ResumeIDs []string `json:"resume_ids"`
		}
		if err := ctx.BindJSON(&req); err != nil || req.JobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要 job_id"})
			return
		}

		resp, err := matchHandler.HandleBatchMatchRequest(c, req.JobID, req.ResumeIDs)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusAccepted, resp)
	})

	api.GET("/match/results", func(c context.Context, ctx *app.RequestContext) {
		jobID := ctx.Query("job_id")
		if jobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要 job_id"})
			return
		}
		limit := queryInt(ctx, "limit", 50)

		items, err := matchHandler.HandleListMatches(c, jobID, limit)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"job_id": jobID, "matches": items})
	})

	api.GET("/resume/:resume_id/original", func(c context.Context, ctx *app.RequestContext) {
		doc, err := documentHandler.HandleResumeDownload(c, ctx.Param("resume_id"))
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.Response.Header.Set("Content-Disposition", "attachment; filename=\""+doc.Filename+"\"")
		ctx.Data(consts.StatusOK, doc.ContentType, doc.Data)
	})

	api.GET("/resume/:resume_id/download-url", func(c context.Context, ctx *app.RequestContext) {
		expiry := time.Duration(queryInt(ctx, "expiry_minutes", 15)) * time.Minute
		url, err := documentHandler.HandleResumeDownloadURL(c, ctx.Param("resume_id"), expiry)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"url": url, "expires_in_minutes": int(expiry.Minutes())})
	})

	api.DELETE("/resume/:resume_id", func(c context.Context, ctx *app.RequestContext) {
		if err := documentHandler.HandleResumeDelete(c, ctx.Param("resume_id")); err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "DELETED"})
	})

	api.GET("/resumes", func(c context.Context, ctx *app.RequestContext) {
		items, err := documentHandler.HandleListResumes(c, queryInt(ctx, "limit", 20), queryInt(ctx, "offset", 0))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"resumes": items})
	})

	api.GET("/jds", func(c context.Context, ctx *app.RequestContext) {
		items, err := documentHandler.HandleListJobs(c, queryInt(ctx, "limit", 20), queryInt(ctx, "offset", 0))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"jds": items})
	})

	api.GET("/stats", func(c context.Context, ctx *app.RequestContext) {
		stats, err := documentHandler.HandleStats(c)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		if matcherStats := matchHandler.HandleMatcherStats(); matcherStats != nil {
			stats["matcher"] = matcherStats
		}
		ctx.JSON(consts.StatusOK, stats)
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// statusForError 把存储层错误映射为HTTP状态码
func statusForError(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return consts.StatusNotFound
	}
	return consts.StatusInternalServerError
}

func queryInt(ctx *app.RequestContext, key string, fallback int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
