package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoTelegramAI/app/storage"
)

func TestLocalStore(t *testing.T) {
	db, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	s := NewLocalStore(db, "telegram")
	defer s.Close()
	ctx := context.Background()

	exists, err := s.CollectionExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, s.CreateCollection(ctx, 2))
	exists, err = s.CollectionExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	meta := Metadata{ChatID: -7, MessageID: 1}
	require.NoError(t, s.Upsert(ctx, []Point{
		{ID: "far", Vector: []float32{0, 1}, Payload: meta.Payload("far")},
		{ID: "close", Vector: []float32{1, 0.1}, Payload: meta.Payload("close")},
		{ID: "exact", Vector: []float32{2, 0}, Payload: meta.Payload("exact")},
		{ID: "wrong-size", Vector: []float32{1, 0, 0}, Payload: meta.Payload("wrong")},
		{ID: "other-chat", Vector: []float32{1, 0}, Payload: Metadata{ChatID: 8}.Payload("other")},
	}))

	got, err := s.Search(ctx, []float32{1, 0}, -7, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "exact", got[0].ID)
	assert.Equal(t, "close", got[1].ID)
	assert.Equal(t, "far", got[2].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)

	chatID, ok := got[0].Payload.ChatID()
	require.True(t, ok)
	assert.Equal(t, int64(-7), chatID)

	limited, err := s.Search(ctx, []float32{1, 0}, -7, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "exact", limited[0].ID)
}

func TestCosineSimilarity(t *testing.T) {
	s, ok := cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	assert.True(t, ok)
	assert.InDelta(t, 0, s, 1e-9)

	s, ok = cosineSimilarity([]float32{1, 1}, []float32{2, 2})
	assert.True(t, ok)
	assert.InDelta(t, 1, s, 1e-9)

	s, ok = cosineSimilarity([]float32{0, 0}, []float32{1, 1})
	assert.True(t, ok)
	assert.Zero(t, s)

	_, ok = cosineSimilarity([]float32{1}, []float32{1, 2})
	assert.False(t, ok)
}
