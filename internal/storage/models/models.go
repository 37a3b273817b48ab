package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ResumeRecord 简历主表，保存原文定位信息和解析出的结构化字段
type ResumeRecord struct {
	ResumeID            string         `gorm:"type:char(36);primaryKey"`
	CandidateName       string         `gorm:"type:varchar(255)"`
	Email               string         `gorm:"type:varchar(255);index:idx_resumes_email"`
	Phone               string         `gorm:"type:varchar(50)"`
	OriginalFilename    string         `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string         `gorm:"type:varchar(1024)"`
	FileMD5             string         `gorm:"column:file_md5;type:char(32);index:idx_resumes_file_md5"`
	SkillsJSON          datatypes.JSON `gorm:"type:json"`
	SkillsByCategory    datatypes.JSON `gorm:"type:json"`
	SuggestedSkillsJSON datatypes.JSON `gorm:"type:json"`
	ExperienceYears     *float64       `gorm:"type:float"`
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'PENDING_PARSING';index:idx_resumes_processing_status"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeRecord) TableName() string {
	return "resumes"
}

// JobRecord 岗位描述表
type JobRecord struct {
	JobID               string         `gorm:"type:char(36);primaryKey"`
	JobTitle            string         `gorm:"type:varchar(255)"`
	Company             string         `gorm:"type:varchar(255)"`
	JobDescriptionText  string         `gorm:"type:text;not null"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	RequiredSkillsJSON  datatypes.JSON `gorm:"type:json"`
	PreferredSkillsJSON datatypes.JSON `gorm:"type:json"`
	SkillsByCategory    datatypes.JSON `gorm:"type:json"`
	Status              string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (JobRecord) TableName() string {
	return "jobs"
}

// MatchRecord 简历-岗位匹配快照表，一经写入不再修改
type MatchRecord struct {
	MatchID            uint64         `gorm:"primaryKey;autoIncrement"`
	ResumeID           string         `gorm:"type:char(36);not null;index:idx_matches_resume_id;uniqueIndex:idx_matches_resume_job,priority:1"`
	JobID              string         `gorm:"type:char(36);not null;index:idx_matches_job_id_score,priority:1;uniqueIndex:idx_matches_resume_job,priority:2"`
	SimilarityScore    float64        `gorm:"type:float;not null"`
	SkillCoverage      float64        `gorm:"type:float;not null"`
	SkillDensity       float64        `gorm:"type:float;not null"`
	WeightedScore      float64        `gorm:"type:float;index:idx_matches_job_id_score,priority:2"`
	MatchingSkillsJSON datatypes.JSON `gorm:"type:json"`
	MissingSkillsJSON  datatypes.JSON `gorm:"type:json"`
	Explanation        string         `gorm:"type:text"`
	MatchedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Resume *ResumeRecord `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Job    *JobRecord    `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (MatchRecord) TableName() string {
	return "resume_job_matches"
}

// StringSliceToJSON 把字符串切片序列化为 datatypes.JSON
func StringSliceToJSON(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	bytes, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// StringMapToJSON 把分类技能映射序列化为 datatypes.JSON
func StringMapToJSON(m map[string][]string) (datatypes.JSON, error) {
	if m == nil {
		m = map[string][]string{}
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// JSONToStringSlice 反序列化 datatypes.JSON 到字符串切片，空值返回nil
func JSONToStringSlice(data datatypes.JSON) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
