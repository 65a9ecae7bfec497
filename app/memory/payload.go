package memory

import (
	"encoding/json"
	"strconv"
)

const (
	KeyText      = "text"
	KeyChatID    = "chat_id"
	KeyMessageID = "message_id"
)

// Metadata describes where an indexed text came from. Tags are copied into
// the payload as-is; the fixed keys always override a tag of the same name.
type Metadata struct {
	ChatID    int64
	MessageID int64
	Tags      map[string]any
}

func (m Metadata) Payload(text string) Payload {
	p := make(Payload, len(m.Tags)+3)
	for k, v := range m.Tags {
		p[k] = v
	}
	p[KeyText] = text
	p[KeyChatID] = m.ChatID
	p[KeyMessageID] = m.MessageID
	return p
}

type Payload map[string]any

func (p Payload) Text() (string, bool) {
	s, ok := p[KeyText].(string)
	return s, ok
}

func (p Payload) ChatID() (int64, bool) {
	return toInt64(p[KeyChatID])
}

func (p Payload) MessageID() (int64, bool) {
	return toInt64(p[KeyMessageID])
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
