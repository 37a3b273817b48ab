package processor

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"resume-match-go/internal/ontology"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/skills"
	"resume-match-go/internal/types"
)

// 岗位名称判定用的角色关键词
var titleKeywords = []string{"engineer", "developer", "analyst", "manager", "specialist"}

// 公司名称判定用的后缀关键词
var companyKeywords = []string{"inc", "corp", "llc", "ltd", "company"}

// 默认的技能提示条数
const defaultSuggestionLimit = 5

// Pipeline 负责把原始文档加工为结构化的简历/JD记录。
// 本体在构造时注入且之后只读，Pipeline自身无共享可变状态，
// 可被多个goroutine并发调用。
type Pipeline struct {
	ontology        *ontology.Ontology
	extractor       TextSource
	suggestionLimit int
	logger          *log.Logger
}

// NewPipeline 创建处理管道。
// ontology与extractor都不能为空。
func NewPipeline(o *ontology.Ontology, extractor TextSource, options ...Option) (*Pipeline, error) {
	if o == nil {
		return nil, ErrOntologyMissing
	}
	if extractor == nil {
		return nil, fmt.Errorf("TextSource 不能为空")
	}

	p := &Pipeline{
		ontology:        o,
		extractor:       extractor,
		suggestionLimit: defaultSuggestionLimit,
		logger:          log.New(os.Stdout, "[Pipeline] ", log.LstdFlags),
	}

	for _, option := range options {
		option(p)
	}

	p.logger.Printf("Pipeline 初始化完成，本体类别数: %d, 技能总数: %d", o.CategoryCount(), o.SkillCount())
	return p, nil
}

// extractText 提取并校验文档文本
func (p *Pipeline) extractText(ctx context.Context, filePath string) (string, error) {
	rawText, err := p.extractor.TextFromFile(ctx, filePath)
	if err != nil {
		return "", newProcessError(filePath, "extract_text", err, "")
	}
	if strings.TrimSpace(rawText) == "" {
		return "", newProcessError(filePath, "extract_text", ErrEmptyContent, "")
	}
	return rawText, nil
}

// ProcessResume 处理单个简历文件，返回结构化的Resume记录。
// 文件缺失/格式不支持/内容为空等不可恢复错误会向上传播；
// 姓名、PII、年限等启发式提取失败只会得到空值，不会让整个处理失败。
func (p *Pipeline) ProcessResume(ctx context.Context, filePath string) (*types.Resume, error) {
	p.logger.Printf("开始处理简历: %s", filePath)

	rawText, err := p.extractText(ctx, filePath)
	if err != nil {
		return nil, err
	}

	email, phone := parser.ExtractPII(rawText)
	name := parser.ExtractName(rawText)

	skillList := skills.Extract(rawText, p.ontology)
	skillsByCategory := skills.ExtractByCategory(rawText, p.ontology)
	suggestions := skills.Suggest(rawText, p.ontology, p.suggestionLimit)

	experience := ExtractExperienceYears(rawText)

	p.logger.Printf("简历处理完成: %s (技能 %d 项, 年限 %.1f)", filePath, len(skillList), experience)

	return &types.Resume{
		RawText:          rawText,
		Email:            email,
		Phone:            phone,
		Name:             name,
		Skills:           skillList,
		SkillsByCategory: skillsByCategory,
		ExperienceYears:  experience,
		SuggestedSkills:  suggestions,
	}, nil
}

// ProcessJobDescription 处理岗位描述文件。
// requiredSkills非空时覆盖提取结果作为必备技能；
// 否则所有提取到的技能都视为必备，加分技能保持为空。
func (p *Pipeline) ProcessJobDescription(ctx context.Context, filePath string, requiredSkills []string) (*types.JobDescription, error) {
	p.logger.Printf("开始处理岗位描述: %s", filePath)

	rawText, err := p.extractText(ctx, filePath)
	if err != nil {
		return nil, err
	}

	extracted := skills.Extract(rawText, p.ontology)
	finalRequired := requiredSkills
	if len(finalRequired) == 0 {
		finalRequired = extracted
	}

	skillsByCategory := skills.ExtractByCategory(rawText, p.ontology)

	title := extractJobTitle(rawText)
	company := extractCompany(rawText)

	p.logger.Printf("岗位描述处理完成: %s (必备技能 %d 项)", filePath, len(finalRequired))

	return &types.JobDescription{
		RawText:          rawText,
		RequiredSkills:   finalRequired,
		SkillsByCategory: skillsByCategory,
		Title:            title,
		Company:          company,
	}, nil
}

// ProcessMultipleResumes 批量处理简历文件。
// 单个文件失败不会中止整批，失败项按路径记录在返回的map中。
func (p *Pipeline) ProcessMultipleResumes(ctx context.Context, filePaths []string) ([]*types.Resume, map[string]error) {
	var resumes []*types.Resume
	failures := make(map[string]error)

	for _, filePath := range filePaths {
		resume, err := p.ProcessResume(ctx, filePath)
		if err != nil {
			p.logger.Printf("处理失败 %s: %v", filePath, err)
			failures[filePath] = err
			continue
		}
		resumes = append(resumes, resume)
	}

	if len(failures) > 0 {
		p.logger.Printf("批量处理完成: 成功 %d, 失败 %d", len(resumes), len(failures))
	} else {
		p.logger.Printf("批量处理完成: 全部 %d 份成功", len(resumes))
	}

	return resumes, failures
}

// Stats 返回管道的静态统计信息
func (p *Pipeline) Stats() map[string]interface{} {
	return map[string]interface{}{
		"ontology_categories":  p.ontology.CategoryCount(),
		"total_skills":         p.ontology.SkillCount(),
		"supported_file_types": []string{".pdf", ".docx", ".txt", ".rtf"},
	}
}

// extractJobTitle 启发式提取岗位名称：
// 前20行内第一个词数不超过6且含角色关键词的行。
func extractJobTitle(text string) string {
	return scanLines(text, 20, 6, titleKeywords)
}

// extractCompany 启发式提取公司名称：
// 前20行内第一个词数不超过4且含公司后缀关键词的行。
func extractCompany(text string) string {
	return scanLines(text, 20, 4, companyKeywords)
}

// scanLines 扫描前maxLines行，返回第一个词数不超过maxWords
// 且包含任一关键词(不区分大小写)的行；未找到时返回空串。
func scanLines(text string, maxLines, maxWords int, keywords []string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(strings.Fields(line)) > maxWords {
			continue
		}
		lower := strings.ToLower(line)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return line
			}
		}
	}
	return ""
}
