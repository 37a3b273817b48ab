package types

// Resume 结构化简历记录，由处理管道从单个源文件构建。
// 构建完成后不再修改，如需更新只能重新处理源文件。
type Resume struct {
	// RawText 提取出的简历全文
	RawText string `json:"raw_text"`

	// Email 提取到的第一个邮箱地址，未找到时为空
	Email string `json:"email,omitempty"`

	// Phone 提取到的第一个电话号码，未找到时为空
	Phone string `json:"phone,omitempty"`

	// Name 启发式提取的候选人姓名，未找到时为空
	Name string `json:"name,omitempty"`

	// Skills 按本体规范大小写的去重技能列表，按标签排序
	Skills []string `json:"skills"`

	// SkillsByCategory 按类别分组的技能（同一技能可出现在多个类别下）
	SkillsByCategory map[string][]string `json:"skills_by_category"`

	// ExperienceYears 启发式推断的工作年限，非负，未推断出时为0
	ExperienceYears float64 `json:"experience_years"`

	// SuggestedSkills 宽松匹配得出的技能提示，不参与打分
	SuggestedSkills []string `json:"suggested_skills,omitempty"`
}

// JobDescription 结构化岗位描述记录
type JobDescription struct {
	// RawText 提取出的JD全文
	RawText string `json:"raw_text"`

	// RequiredSkills 必备技能列表
	RequiredSkills []string `json:"required_skills"`

	// PreferredSkills 加分技能列表
	PreferredSkills []string `json:"preferred_skills"`

	// SkillsByCategory 按类别分组的技能
	SkillsByCategory map[string][]string `json:"skills_by_category"`

	// Title 启发式提取的岗位名称，未找到时为空
	Title string `json:"title,omitempty"`

	// Company 启发式提取的公司名称，未找到时为空
	Company string `json:"company,omitempty"`
}

// AllSkills 返回全部技能（必备在前，加分在后，保持各自顺序）。
// 派生值每次计算，避免required/preferred与汇总字段漂移。
func (jd *JobDescription) AllSkills() []string {
	all := make([]string, 0, len(jd.RequiredSkills)+len(jd.PreferredSkills))
	all = append(all, jd.RequiredSkills...)
	all = append(all, jd.PreferredSkills...)
	return all
}

// MatchResult 一次简历-JD匹配的不可变快照。
// 三个分数均在[0,1]内；MatchingSkills与MissingSkills不相交。
type MatchResult struct {
	// ResumeID / JobID 匹配双方的标识（由调用方提供，可为空）
	ResumeID string `json:"resume_id,omitempty"`
	JobID    string `json:"job_id,omitempty"`

	// SimilarityScore 语义相似度
	SimilarityScore float64 `json:"similarity_score"`

	// SkillCoverage JD技能被简历覆盖的比例
	SkillCoverage float64 `json:"skill_coverage"`

	// SkillDensity 简历技能中与该JD相关的比例
	SkillDensity float64 `json:"skill_density"`

	// MatchingSkills 简历与JD技能的交集
	MatchingSkills []string `json:"matching_skills"`

	// MissingSkills JD必备技能中简历缺失的部分
	MissingSkills []string `json:"missing_skills"`

	// Explanation 规则生成的可读解释
	Explanation string `json:"explanation"`
}

// RankedResume 排序结果中的一项：简历及其匹配结果
type RankedResume struct {
	Resume *Resume      `json:"resume"`
	Result *MatchResult `json:"result"`
}
