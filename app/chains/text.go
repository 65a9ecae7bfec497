package chains

import (
	"context"
	"fmt"
	"strings"

	"GoTelegramAI/app/models"
)

func Translate(ctx context.Context, llm models.Interface, text, lang string) (string, error) {
	return think(ctx, llm, fmt.Sprintf(translatePrompt, lang, text))
}

func Polish(ctx context.Context, llm models.Interface, text string) (string, error) {
	return think(ctx, llm, fmt.Sprintf(polishPrompt, text))
}

// Answer replies to question using memory, the rendered chat search results.
func Answer(ctx context.Context, llm models.Interface, question, memory string) (string, error) {
	return llm.Think(ctx, []models.Message{
		models.System(fmt.Sprintf(askPrompt, memory)),
		models.User(question),
	})
}

func think(ctx context.Context, llm models.Interface, prompt string) (string, error) {
	out, err := llm.Think(ctx, []models.Message{models.User(prompt)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
