package models

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Interface interface {
	Think(ctx context.Context, messages []Message) (string, error)
	// Generate asks for a JSON answer matching the schema of out and decodes it into out.
	Generate(ctx context.Context, messages []Message, name string, out any) error
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
