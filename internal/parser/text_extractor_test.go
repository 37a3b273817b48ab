package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *TextExtractor {
	t.Helper()
	extractor, err := NewTextExtractor(context.Background())
	require.NoError(t, err)
	return extractor
}

func TestTextFromTxtFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("John Smith\nPython developer"), 0644))

	text, err := newTestExtractor(t).TextFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nPython developer", text)
}

func TestTextFromRTFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.rtf")
	content := `{\rtf1\ansi Python and SQL experience\par}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	text, err := newTestExtractor(t).TextFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Python and SQL experience")
	assert.NotContains(t, text, `\rtf1`)
}

func TestTextFromMissingFile(t *testing.T) {
	_, err := newTestExtractor(t).TextFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestTextFromUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	_, err := newTestExtractor(t).TextFromFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextFromDocRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.doc")
	require.NoError(t, os.WriteFile(path, []byte("legacy"), 0644))

	// .doc 是已知扩展名但当前不支持提取
	_, err := newTestExtractor(t).TextFromFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	assert.NoError(t, ValidateFile(path))
	assert.ErrorIs(t, ValidateFile("missing.pdf"), ErrFileNotFound)
}
