package clients

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/runtime"
	"GoTelegramAI/app/tools"
	"GoTelegramAI/app/utils"
)

const (
	discordPrefix       = "!"
	discordMessageLimit = 2000
)

var _ Interface = &DiscordClient{}

type DiscordClient struct {
	Client
	session *discordgo.Session
}

func NewDiscordClient(token string) (*DiscordClient, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dc := &DiscordClient{session: session}

	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return dc, nil
}

func NewDiscordClientFromConfig(cfg map[string]string) (*DiscordClient, error) {
	return NewDiscordClient(cfg["token"])
}

func (c *DiscordClient) Subscribe(rt *runtime.Runtime) error {
	c.runtime = rt
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	log.Info("📡 Discord client started. Listening for messages...")
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	req, ok := discordRequest(m.Message)
	if !ok {
		return
	}
	c.runtime.QueueEvent(runtime.Event{
		Request: req,
		Reply:   c.replyTo(m.ChannelID, m.Reference()),
	})
}

// discordRequest only accepts prefixed commands; plain Discord messages are
// not indexed.
func discordRequest(m *discordgo.Message) (tools.Request, bool) {
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, discordPrefix) {
		return tools.Request{}, false
	}
	command, args := splitCommand(strings.TrimPrefix(content, discordPrefix))
	if command == "" {
		return tools.Request{}, false
	}

	channelID, _ := strconv.ParseInt(m.ChannelID, 10, 64)
	messageID, _ := strconv.ParseInt(m.ID, 10, 64)
	req := tools.Request{
		Source:    tools.SourceDiscord,
		ChatID:    channelID,
		MessageID: messageID,
		Command:   strings.ToLower(command),
		Args:      strings.TrimSpace(args),
	}
	if m.ReferencedMessage != nil {
		req.ReplyText = m.ReferencedMessage.Content
	}
	return req, true
}

// splitCommand cuts s at its first whitespace, so newlines end the command
// name too.
func splitCommand(s string) (command, args string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func (c *DiscordClient) replyTo(channelID string, ref *discordgo.MessageReference) func(context.Context, string) error {
	return func(_ context.Context, text string) error {
		_, err := c.session.ChannelMessageSendReply(channelID, utils.Truncate(text, discordMessageLimit), ref)
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		return nil
	}
}
