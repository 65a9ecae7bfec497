package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

var ErrEmbeddingCount = errors.New("embedding count does not match input count")

// Embed returns one vector per text, in input order. Cached texts are not
// sent again; every miss goes out in a single request.
func (mc *LLMClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if mc.embeddingsModel == "" {
		return nil, errors.New("embeddings model is empty; configure LLMClient.embeddingsModel")
	}

	out := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		if emb, ok := mc.cache.Get(ctx, mc.cacheKey(text)); ok {
			out[i] = emb
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	input := make([]string, len(missing))
	for j, i := range missing {
		input[j] = texts[i]
	}

	resp, err := mc.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(mc.embeddingsModel),
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(resp.Data), len(input))
	}

	for pos, item := range resp.Data {
		j := item.Index
		if j < 0 || j >= len(missing) {
			j = pos
		}
		i := missing[j]
		out[i] = item.Embedding
		mc.cache.Set(ctx, mc.cacheKey(texts[i]), item.Embedding)
	}
	log.WithFields(log.Fields{
		"model":  mc.embeddingsModel,
		"inputs": len(input),
		"cached": len(texts) - len(input),
	}).Debug("🧬 Embeddings created")

	return out, nil
}

func (mc *LLMClient) cacheKey(text string) string {
	return mc.embeddingsModel + "\x00" + text
}
