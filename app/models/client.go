package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

var ErrEmptyCompletion = errors.New("empty LLM response")

var (
	_ Interface = &LLMClient{}
	_ Embedder  = &LLMClient{}
)

type openAIAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Temperature    float32
}

type LLMClient struct {
	api             openAIAPI
	cache           Cache
	model           string
	embeddingsModel string
	temperature     float32
}

func NewLLMClient(opts Options, cache Cache) *LLMClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = DefaultEmbeddingModel
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &LLMClient{
		api:             openai.NewClientWithConfig(cfg),
		cache:           cache,
		model:           opts.Model,
		embeddingsModel: opts.EmbeddingModel,
		temperature:     opts.Temperature,
	}
}

func (mc *LLMClient) Think(ctx context.Context, messages []Message) (string, error) {
	resp, err := mc.generateResponse(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (mc *LLMClient) Generate(ctx context.Context, messages []Message, name string, out any) error {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("generate %s: out must be a non-nil pointer", name)
	}
	schema, err := jsonschema.GenerateSchemaForType(target.Elem().Interface())
	if err != nil {
		return fmt.Errorf("schema for %s: %w", name, err)
	}

	resp, err := mc.generateResponse(ctx, messages, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: schema,
			Strict: true,
		},
	})
	if err != nil {
		return err
	}

	content := resp.Choices[0].Message.Content
	if err = json.Unmarshal([]byte(content), out); err != nil {
		log.WithField("format", name).Warnf("⚠️ Unparseable structured response: %s", content)
		return fmt.Errorf("parse %s response: %w", name, err)
	}
	return nil
}

func (mc *LLMClient) generateResponse(ctx context.Context, messages []Message,
	format *openai.ChatCompletionResponseFormat) (*openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:          mc.model,
		Messages:       toOpenAIMessages(messages),
		Temperature:    mc.temperature,
		ResponseFormat: format,
	}

	resp, err := mc.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	log.WithFields(log.Fields{
		"model":  resp.Model,
		"tokens": resp.Usage.TotalTokens,
	}).Debug("🧠 Completion received")
	return &resp, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
