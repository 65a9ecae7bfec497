package memory

import (
	"fmt"
	"strings"
)

const internalChatOffset = 1_000_000_000_000

// NormalizeChatID maps negative (supergroup and channel) chat ids to the
// form used in t.me/c links. Other ids pass through.
func NormalizeChatID(chatID int64) int64 {
	if chatID < 0 {
		return chatID + internalChatOffset
	}
	return chatID
}

func MessageLink(chatID, messageID int64) string {
	return fmt.Sprintf("https://t.me/c/%d/%d", NormalizeChatID(chatID), messageID)
}

// Render keeps the order of points. Points without text, or without the ids
// needed for a link, are left out.
func Render(points []ScoredPoint) string {
	var sb strings.Builder
	for _, p := range points {
		text, ok := p.Payload.Text()
		if !ok || text == "" {
			continue
		}
		chatID, okChat := p.Payload.ChatID()
		messageID, okMessage := p.Payload.MessageID()
		if !okChat || !okMessage {
			continue
		}
		sb.WriteString(MessageLink(chatID, messageID))
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}
