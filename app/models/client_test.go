package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Format   *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type fakeOpenAI struct {
	server         *httptest.Server
	completion     string
	lastChat       chatRequest
	lastEmbeddings []string
	embedCalls     atomic.Int32
	fail           bool
}

func newFakeOpenAI(t *testing.T) *fakeOpenAI {
	f := &fakeOpenAI{completion: "ok"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if f.fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		switch r.URL.Path {
		case "/v1/chat/completions":
			assert.NoError(t, json.Unmarshal(body, &f.lastChat))
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "cmpl-1",
				"model": "test-model",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": f.completion},
				}},
				"usage": map[string]any{"total_tokens": 7},
			})
		case "/v1/embeddings":
			f.embedCalls.Add(1)
			var req struct {
				Input []string `json:"input"`
			}
			assert.NoError(t, json.Unmarshal(body, &req))
			f.lastEmbeddings = req.Input
			data := make([]map[string]any, len(req.Input))
			for i, in := range req.Input {
				data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{float32(len(in)), float32(i)}}
			}
			json.NewEncoder(w).Encode(map[string]any{"object": "list", "model": "emb", "data": data})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenAI) client(cache Cache) *LLMClient {
	return NewLLMClient(Options{APIKey: "test", BaseURL: f.server.URL + "/v1"}, cache)
}

func TestThink(t *testing.T) {
	f := newFakeOpenAI(t)
	f.completion = "hello there"
	mc := f.client(nil)

	out, err := mc.Think(context.Background(), []Message{System("be brief"), User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, DefaultModel, f.lastChat.Model)
	require.Len(t, f.lastChat.Messages, 2)
	assert.Equal(t, RoleSystem, f.lastChat.Messages[0].Role)
	assert.Equal(t, "hi", f.lastChat.Messages[1].Content)
	assert.Nil(t, f.lastChat.Format)
}

func TestThinkPropagatesAPIError(t *testing.T) {
	f := newFakeOpenAI(t)
	f.fail = true

	_, err := f.client(nil).Think(context.Background(), []Message{User("hi")})
	require.Error(t, err)
	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode)
}

func TestGenerate(t *testing.T) {
	type answer struct {
		Title string   `json:"title" description:"short title"`
		Tags  []string `json:"tags"`
	}
	f := newFakeOpenAI(t)
	f.completion = `{"title":"Go","tags":["a","b"]}`

	var out answer
	err := f.client(nil).Generate(context.Background(), []Message{User("x")}, "answer", &out)
	require.NoError(t, err)
	assert.Equal(t, answer{Title: "Go", Tags: []string{"a", "b"}}, out)
	require.NotNil(t, f.lastChat.Format)
	assert.Equal(t, string(openai.ChatCompletionResponseFormatTypeJSONSchema), f.lastChat.Format.Type)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	f := newFakeOpenAI(t)
	f.completion = `not json`

	var out struct {
		Title string `json:"title"`
	}
	assert.Error(t, f.client(nil).Generate(context.Background(), []Message{User("x")}, "answer", &out))
	assert.Error(t, f.client(nil).Generate(context.Background(), []Message{User("x")}, "answer", out))
}

func TestEmbedKeepsOrderAndCaches(t *testing.T) {
	f := newFakeOpenAI(t)
	mc := f.client(NewMemoryCache())
	ctx := context.Background()

	vecs, err := mc.Embed(ctx, []string{"a", "bbb"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{3, 1}, vecs[1])
	assert.Equal(t, int32(1), f.embedCalls.Load())

	vecs, err = mc.Embed(ctx, []string{"bbb", "cc"})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, vecs[0])
	assert.Equal(t, []float32{2, 0}, vecs[1])
	assert.Equal(t, []string{"cc"}, f.lastEmbeddings)
	assert.Equal(t, int32(2), f.embedCalls.Load())

	_, err = mc.Embed(ctx, []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.embedCalls.Load())
}

func TestEmbedError(t *testing.T) {
	f := newFakeOpenAI(t)
	f.fail = true
	_, err := f.client(nil).Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestRedisCache(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewRedisCache(ctx, "redis://"+s.Addr(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	cache.Set(ctx, "k", []float32{0.5, -1})
	vec, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, -1}, vec)
	assert.Equal(t, time.Hour, s.TTL(redisKey("k")))

	require.NoError(t, s.Set(redisKey("bad"), "abc"))
	_, ok = cache.Get(ctx, "bad")
	assert.False(t, ok)
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url", 0)
	assert.Error(t, err)
}
