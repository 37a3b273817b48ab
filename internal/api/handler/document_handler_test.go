package handler

import (
	"testing"

	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResumeRecord(t *testing.T) {
	resume := &types.Resume{
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		Phone:           "+1 555 000 1111",
		Skills:          []string{"python", "sql"},
		SuggestedSkills: []string{"docker"},
		SkillsByCategory: map[string][]string{
			"programming": {"python", "sql"},
		},
		ExperienceYears: 5,
	}

	record, err := buildResumeRecord("resume-1", "cv.pdf", "resume/resume-1/original.pdf",
		"resume/resume-1/parsed_text.txt", "d41d8cd98f00b204e9800998ecf8427e", resume)
	require.NoError(t, err)

	assert.Equal(t, "resume-1", record.ResumeID)
	assert.Equal(t, "cv.pdf", record.OriginalFilename)
	// 存的是上传文件内容的MD5
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", record.FileMD5)
	assert.Equal(t, "PARSED", record.ProcessingStatus)
	require.NotNil(t, record.ExperienceYears)
	assert.Equal(t, 5.0, *record.ExperienceYears)

	skills, err := models.JSONToStringSlice(record.SkillsJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "sql"}, skills)
}

func TestBuildResumeRecord_ZeroExperienceStaysNil(t *testing.T) {
	record, err := buildResumeRecord("resume-1", "cv.pdf", "k1", "k2", "md5", &types.Resume{})
	require.NoError(t, err)
	assert.Nil(t, record.ExperienceYears)
}

func TestBuildJobRecord(t *testing.T) {
	jd := &types.JobDescription{
		RawText:         "We need a Go engineer",
		Title:           "Backend Engineer",
		Company:         "Acme Corp",
		RequiredSkills:  []string{"go", "mysql"},
		PreferredSkills: []string{"kubernetes"},
	}

	record, err := buildJobRecord("job-1", "jd/job-1/original.txt", jd)
	require.NoError(t, err)

	assert.Equal(t, "job-1", record.JobID)
	assert.Equal(t, "Backend Engineer", record.JobTitle)
	assert.Equal(t, "We need a Go engineer", record.JobDescriptionText)
	assert.Equal(t, "ACTIVE", record.Status)

	required, err := models.JSONToStringSlice(record.RequiredSkillsJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "mysql"}, required)
}

func TestContentTypeForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"cv.pdf", "application/pdf"},
		{"CV.PDF", "application/pdf"},
		{"cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"notes.txt", "text/plain"},
		{"legacy.rtf", "application/rtf"},
		{"unknown.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contentTypeForFilename(tt.filename), tt.filename)
	}
}
