package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExperienceYears(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{
			name:     "显式年限",
			text:     "I have 5 years of experience in backend development",
			expected: 5,
		},
		{
			name:     "多处年限取最大",
			text:     "5 years of experience as well as 2 years of experience as intern",
			expected: 5,
		},
		{
			name:     "带加号",
			text:     "10+ years of industry experience",
			expected: 10,
		},
		{
			name:     "experience在前",
			text:     "Experience: about 7 years in data engineering",
			expected: 7,
		},
		{
			name:     "yr缩写",
			text:     "Java (3 yr)",
			expected: 3,
		},
		{
			name:     "日期区间回退",
			text:     "Acme Corp 2018-2020\nBeta LLC 2020-present",
			expected: 2,
		},
		{
			name:     "日期区间上限15",
			text:     "2001-2002 2002-2003 2003-2004 2004-2005 2005-2006 2006-2007 2007-2008 2008-2009 2009-2010 2010-2011 2011-2012 2012-2013 2013-2014 2014-2015 2015-2016 2016-2017 2017-2018",
			expected: 15,
		},
		{
			name:     "无任何线索",
			text:     "Passionate engineer who loves clean code",
			expected: 0,
		},
		{
			name:     "空文本",
			text:     "",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractExperienceYears(tt.text))
		})
	}
}
