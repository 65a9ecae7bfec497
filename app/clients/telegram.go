package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/runtime"
	"GoTelegramAI/app/tools"
	"GoTelegramAI/app/utils"
)

const (
	telegramMessageLimit = 4096
	updateTimeout        = 60
)

var ErrNoDeveloperChat = errors.New("developer chat id is not configured")

// Uploaded files with these MIME types are summarized.
var documentTypes = map[string]bool{
	"application/pdf": true,
	"text/html":       true,
	"text/plain":      true,
}

var _ Interface = &TelegramClient{}

type TelegramClient struct {
	Client
	bot             *tgbotapi.BotAPI
	developerChatID int64
}

func NewTelegramClient(token string, developerChatID int64) (*TelegramClient, error) {
	return newTelegramClient(token, developerChatID, tgbotapi.APIEndpoint)
}

func newTelegramClient(token string, developerChatID int64, endpoint string) (*TelegramClient, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.WithField("bot", bot.Self.UserName).Info("🤖 Telegram bot authorized")
	return &TelegramClient{bot: bot, developerChatID: developerChatID}, nil
}

func NewTelegramClientFromConfig(cfg map[string]string) (*TelegramClient, error) {
	var devChat int64
	if raw := cfg["developer_chat_id"]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid developer_chat_id %q: %w", raw, err)
		}
		devChat = id
	}
	return NewTelegramClient(cfg["token"], devChat)
}

func (c *TelegramClient) Subscribe(rt *runtime.Runtime) error {
	c.runtime = rt

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			c.onUpdate(update)
		}
	}()
	log.Info("📡 Telegram client started. Listening for messages...")
	return nil
}

func (c *TelegramClient) Close() error {
	c.bot.StopReceivingUpdates()
	return nil
}

func (c *TelegramClient) onUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	req := telegramRequest(msg)
	if req.Command == "" && req.Args == "" {
		return
	}
	c.attachDocument(msg, &req)
	c.runtime.QueueEvent(runtime.Event{
		Request: req,
		Reply:   c.replyTo(msg.Chat.ID, msg.MessageID),
	})
}

func telegramRequest(msg *tgbotapi.Message) tools.Request {
	req := tools.Request{
		Source:    tools.SourceTelegram,
		ChatID:    msg.Chat.ID,
		MessageID: int64(msg.MessageID),
	}
	switch {
	case msg.IsCommand():
		req.Command = msg.Command()
		req.Args = msg.CommandArguments()
	case isDocument(msg.Document):
		req.Command = tools.SummarizeCommand
		req.Args = msg.Caption
	default:
		req.Args = messageText(msg)
	}
	if msg.ReplyToMessage != nil {
		req.ReplyText = messageText(msg.ReplyToMessage)
	}
	return req
}

func isDocument(doc *tgbotapi.Document) bool {
	return doc != nil && documentTypes[doc.MimeType]
}

// requestDocument is the uploaded file a summary should read: the one sent
// with the message, or the one of the replied-to message.
func requestDocument(msg *tgbotapi.Message, req tools.Request) *tgbotapi.Document {
	if req.Command != tools.SummarizeCommand {
		return nil
	}
	if isDocument(msg.Document) {
		return msg.Document
	}
	if msg.ReplyToMessage != nil && isDocument(msg.ReplyToMessage.Document) {
		return msg.ReplyToMessage.Document
	}
	return nil
}

func (c *TelegramClient) attachDocument(msg *tgbotapi.Message, req *tools.Request) {
	doc := requestDocument(msg, *req)
	if doc == nil {
		return
	}
	fileURL, err := c.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		// Transport errors quote the request URL, which holds the token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		log.Warnf("⚠️ Could not resolve document %s: %v", doc.FileName, err)
		return
	}
	req.DocumentURL = fileURL
	req.DocumentName = doc.FileName
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func (c *TelegramClient) replyTo(chatID int64, messageID int) func(context.Context, string) error {
	return func(_ context.Context, text string) error {
		reply := tgbotapi.NewMessage(chatID, utils.TruncateUTF16(text, telegramMessageLimit))
		reply.ReplyToMessageID = messageID
		reply.DisableWebPagePreview = true
		_, err := c.bot.Send(reply)
		return err
	}
}

// Notify messages the developer chat.
func (c *TelegramClient) Notify(_ context.Context, text string) error {
	if c.developerChatID == 0 {
		return ErrNoDeveloperChat
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(c.developerChatID, utils.TruncateUTF16(text, telegramMessageLimit)))
	return err
}

func (c *TelegramClient) HasDeveloperChat() bool {
	return c.developerChatID != 0
}
