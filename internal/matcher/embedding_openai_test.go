package matcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resume-match-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T, baseURL string) *OpenAIEmbedder {
	t.Helper()
	embedder, err := NewOpenAIEmbedder("test-key", config.EmbeddingConfig{
		Model:          "text-embedding-v3",
		Dimensions:     3,
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return embedder
}

func TestNewOpenAIEmbedder_Validation(t *testing.T) {
	_, err := NewOpenAIEmbedder("", config.EmbeddingConfig{BaseURL: "http://localhost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API密钥不能为空")

	_, err = NewOpenAIEmbedder("key", config.EmbeddingConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseURL不能为空")
}

func TestOpenAIEmbedder_EmbedStrings_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-v3", req.Model)

		// 故意乱序返回，客户端应按index重排
		resp := openAIEmbeddingResponse{
			Object: "list",
			Data: []openAIDataEntry{
				{Object: "embedding", Embedding: []float64{0, 1, 0}, Index: 1},
				{Object: "embedding", Embedding: []float64{1, 0, 0}, Index: 0},
			},
			Model: "text-embedding-v3",
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	vectors, err := embedder.EmbedStrings(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	assert.Equal(t, []float64{1, 0, 0}, vectors[0])
	assert.Equal(t, []float64{0, 1, 0}, vectors[1])
}

func TestOpenAIEmbedder_EmbedStrings_EmptyInput(t *testing.T) {
	embedder := newTestEmbedder(t, "http://unreachable.invalid")

	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, vectors)
	assert.Empty(t, vectors)
}

func TestOpenAIEmbedder_EmbedStrings_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Error: &openAIErrorDetail{Message: "invalid api key", Type: "invalid_request_error"},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	_, err := embedder.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestOpenAIEmbedder_EmbedStrings_ErrorInBody(t *testing.T) {
	// 部分服务在HTTP 200下返回业务错误
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Error: &openAIErrorDetail{Message: "model overloaded", Code: "rate_limit"},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	_, err := embedder.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAIEmbedder_EmbedStrings_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Object: "list",
			Data: []openAIDataEntry{
				{Object: "embedding", Embedding: []float64{1, 0, 0}, Index: 0},
			},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	_, err := embedder.EmbedStrings(context.Background(), []string{"a", "b"})
	require.Error(t, err)
}

func TestOpenAIEmbedder_GetDimensions(t *testing.T) {
	embedder := newTestEmbedder(t, "http://localhost")
	assert.Equal(t, 3, embedder.GetDimensions())
}
