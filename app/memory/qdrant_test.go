package memory

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfig(t *testing.T) {
	cfg, err := qdrantConfig("http://qdrant:6334", "")
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.False(t, cfg.UseTLS)

	cfg, err = qdrantConfig("https://cloud.example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "cloud.example.com", cfg.Host)
	assert.Equal(t, defaultQdrantPort, cfg.Port)
	assert.True(t, cfg.UseTLS)
	assert.Equal(t, "secret", cfg.APIKey)

	_, err = qdrantConfig("localhost", "")
	assert.Error(t, err)
	_, err = qdrantConfig("http://host:port", "")
	assert.Error(t, err)
}

func TestQdrantConfigWarnsOnRESTPort(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	cfg, err := qdrantConfig("http://qdrant:6333", "")
	require.NoError(t, err)
	assert.Equal(t, 6333, cfg.Port)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "gRPC")

	hook.Reset()
	_, err = qdrantConfig("http://qdrant:6334", "")
	require.NoError(t, err)
	assert.Nil(t, hook.LastEntry())
}

func TestToQdrantPoints(t *testing.T) {
	id := "5f0c7b4e-3f0e-4a55-9a53-1d0c1b8d7e21"
	pts, err := toQdrantPoints([]Point{{
		ID:      id,
		Vector:  []float32{0.1, 0.2},
		Payload: Metadata{ChatID: -100, MessageID: 5, Tags: map[string]any{"lang": "en"}}.Payload("hi"),
	}})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, id, pts[0].Id.GetUuid())
	assert.Equal(t, "hi", pts[0].Payload[KeyText].GetStringValue())
	assert.Equal(t, int64(-100), pts[0].Payload[KeyChatID].GetIntegerValue())
	assert.Equal(t, "en", pts[0].Payload["lang"].GetStringValue())

	_, err = toQdrantPoints([]Point{{ID: id, Payload: Payload{"bad": struct{}{}}}})
	assert.Error(t, err)
}

func TestFromQdrantPoints(t *testing.T) {
	resp := []*qdrant.ScoredPoint{
		{
			Id:    qdrant.NewIDNum(7),
			Score: 0.75,
			Payload: map[string]*qdrant.Value{
				KeyText:      qdrant.NewValueString("hello"),
				KeyChatID:    qdrant.NewValueInt(-100123),
				KeyMessageID: qdrant.NewValueInt(55),
				"tags":       {Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{
					Values: []*qdrant.Value{qdrant.NewValueBool(true)},
				}}},
			},
		},
		{Id: qdrant.NewIDUUID("u-1"), Payload: map[string]*qdrant.Value{}},
	}

	out := fromQdrantPoints(resp)
	require.Len(t, out, 2)
	assert.Equal(t, "7", out[0].ID)
	assert.Equal(t, float32(0.75), out[0].Score)
	assert.Equal(t, []any{true}, out[0].Payload["tags"])
	assert.Equal(t, "u-1", out[1].ID)
	assert.Equal(t, "https://t.me/c/999999899877/55\nhello\n", Render(out))
}
