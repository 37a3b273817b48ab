package handler

import (
	"context"
	"testing"

	"resume-match-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMatchRequestConsumer_NoQueue(t *testing.T) {
	h := NewMatchHandler(nil, &storage.Storage{}, nil)

	stop, err := h.StartMatchRequestConsumer(context.Background())
	require.Error(t, err)
	assert.Nil(t, stop)
}

func TestStartMatchRequestConsumer_NoStorage(t *testing.T) {
	h := NewMatchHandler(nil, nil, nil)

	stop, err := h.StartMatchRequestConsumer(context.Background())
	require.Error(t, err)
	assert.Nil(t, stop)
}

func TestHandleMatcherStats_NilMatcher(t *testing.T) {
	h := NewMatchHandler(nil, &storage.Storage{}, nil)
	assert.Nil(t, h.HandleMatcherStats())
}
