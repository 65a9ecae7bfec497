package tools

import (
	"context"
	"errors"

	"GoTelegramAI/app/utils"
)

const (
	SourceTelegram = "telegram"
	SourceDiscord  = "discord"

	// SummarizeCommand also handles uploaded documents.
	SummarizeCommand = "sum"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoInput        = errors.New("no text given")
)

// Request is a chat message as seen by the tools, independent of the client
// it came from.
type Request struct {
	Source    string `json:"source"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Command   string `json:"command,omitempty"`
	Args      string `json:"args,omitempty"`
	ReplyText string `json:"reply_text,omitempty"`

	// DocumentURL points at an attached file. It may embed the bot token, so
	// it never leaves the process.
	DocumentURL  string `json:"-"`
	DocumentName string `json:"document_name,omitempty"`
}

// MessageText is the command arguments followed by the text of the replied-to
// message, if any.
func (r Request) MessageText() string {
	return utils.JoinNonEmpty("\n", r.Args, r.ReplyText)
}

type Tool struct {
	Name        string                                                 `json:"name"`
	Description string                                                 `json:"description"`
	HandlerFunc func(ctx context.Context, req Request) (string, error) `json:"-"`
}
