package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, Request) (string, error) { return "", nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Tool{Name: "b", HandlerFunc: noop}))
	require.NoError(t, r.Register(Tool{Name: "a", HandlerFunc: noop}))
	assert.Error(t, r.Register(Tool{Name: "", HandlerFunc: noop}))
	assert.Error(t, r.Register(Tool{Name: "c"}))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)

	_, ok := r.Get("a")
	assert.True(t, ok)
	r.Unregister("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
}

func TestRequestMessageText(t *testing.T) {
	assert.Equal(t, "args\nreplied", Request{Args: " args ", ReplyText: "replied"}.MessageText())
	assert.Equal(t, "replied", Request{ReplyText: "replied"}.MessageText())
	assert.Empty(t, Request{}.MessageText())
}
