package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChatID(t *testing.T) {
	cases := []struct {
		in, want int64
	}{
		{-100123, 999_999_899_877},
		{-1, 999_999_999_999},
		{-1001234567890, -1234567890},
		{0, 0},
		{123456, 123456},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeChatID(c.in), c.in)
	}
}

func TestMessageLink(t *testing.T) {
	assert.Equal(t, "https://t.me/c/999999899877/55", MessageLink(-100123, 55))
	assert.Equal(t, "https://t.me/c/777/3", MessageLink(777, 3))
}

func TestRender(t *testing.T) {
	points := []ScoredPoint{
		{ID: "b", Score: 0.1, Payload: Payload{KeyText: "low", KeyChatID: int64(-5), KeyMessageID: int64(2)}},
		{ID: "no-text", Payload: Payload{KeyChatID: int64(-5), KeyMessageID: int64(3)}},
		{ID: "empty-text", Payload: Payload{KeyText: "", KeyChatID: int64(-5), KeyMessageID: int64(4)}},
		{ID: "no-message", Payload: Payload{KeyText: "orphan", KeyChatID: int64(-5)}},
		{ID: "a", Score: 0.9, Payload: Payload{KeyText: "high", KeyChatID: float64(-5), KeyMessageID: "7"}},
	}

	assert.Equal(t,
		"https://t.me/c/999999999995/2\nlow\nhttps://t.me/c/999999999995/7\nhigh\n",
		Render(points))
	assert.Equal(t, "", Render(nil))
}

func TestMetadataPayload(t *testing.T) {
	p := Metadata{ChatID: 9, MessageID: 3, Tags: map[string]any{"chat_id": "spoofed", "lang": "ja"}}.Payload("hi")

	text, _ := p.Text()
	chatID, _ := p.ChatID()
	messageID, _ := p.MessageID()
	assert.Equal(t, "hi", text)
	assert.Equal(t, int64(9), chatID)
	assert.Equal(t, int64(3), messageID)
	assert.Equal(t, "ja", p["lang"])
}
