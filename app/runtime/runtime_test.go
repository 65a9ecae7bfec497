package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoTelegramAI/app/memory"
	"GoTelegramAI/app/tools"
)

type fakeIndexer struct {
	mu    sync.Mutex
	metas []memory.Metadata
	texts []string
	err   error
}

func (f *fakeIndexer) Index(_ context.Context, meta memory.Metadata, texts ...string) ([]memory.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metas = append(f.metas, meta)
	f.texts = append(f.texts, texts...)
	return nil, f.err
}

type fakeReporter struct {
	reqs []tools.Request
	errs []error
}

func (f *fakeReporter) Report(_ context.Context, req tools.Request, err error) {
	f.reqs = append(f.reqs, req)
	f.errs = append(f.errs, err)
}

type replies struct {
	mu  sync.Mutex
	out []string
}

func (r *replies) reply(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, text)
	return nil
}

func (r *replies) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.out...)
}

func newTestRuntime(t *testing.T, indexer Indexer, reporter Reporter) *Runtime {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(tools.Tool{Name: "echo", HandlerFunc: func(_ context.Context, req tools.Request) (string, error) {
		return req.MessageText(), nil
	}}))
	require.NoError(t, reg.Register(tools.Tool{Name: "fail", HandlerFunc: func(context.Context, tools.Request) (string, error) {
		return "", errors.New("boom")
	}}))
	require.NoError(t, reg.Register(tools.Tool{Name: "empty", HandlerFunc: func(context.Context, tools.Request) (string, error) {
		return "", tools.ErrNoInput
	}}))
	return NewRuntime(reg, indexer, reporter)
}

func TestRuntimeQueueEvent(t *testing.T) {
	r := newTestRuntime(t, nil, nil)
	for i := 0; i < queueSize; i++ {
		require.True(t, r.QueueEvent(Event{}))
	}
	assert.False(t, r.QueueEvent(Event{}))
	assert.Len(t, r.events, queueSize)
}

func TestRuntimeCommands(t *testing.T) {
	rep := &fakeReporter{}
	r := newTestRuntime(t, nil, rep)
	out := &replies{}
	ctx := context.Background()

	r.HandleEvent(ctx, Event{Request: tools.Request{Command: "echo", Args: "hi"}, Reply: out.reply})
	r.HandleEvent(ctx, Event{Request: tools.Request{Command: "fail", ChatID: 9}, Reply: out.reply})
	r.HandleEvent(ctx, Event{Request: tools.Request{Command: "empty"}, Reply: out.reply})
	r.HandleEvent(ctx, Event{Request: tools.Request{Command: "nope"}, Reply: out.reply})

	got := out.all()
	require.Len(t, got, 3)
	assert.Equal(t, "hi", got[0])
	assert.Equal(t, failureNotice, got[1])
	assert.Contains(t, got[2], "Nothing to work with")

	require.Len(t, rep.errs, 1)
	assert.EqualError(t, rep.errs[0], "boom")
	assert.Equal(t, int64(9), rep.reqs[0].ChatID)
}

func TestRuntimeIndexesPlainTelegramText(t *testing.T) {
	idx := &fakeIndexer{}
	r := newTestRuntime(t, idx, nil)
	ctx := context.Background()

	r.HandleEvent(ctx, Event{Request: tools.Request{Source: tools.SourceTelegram, ChatID: -100123, MessageID: 55, Args: "hello"}})
	r.HandleEvent(ctx, Event{Request: tools.Request{Source: tools.SourceTelegram, ChatID: -100123, MessageID: 56, Args: "   "}})
	r.HandleEvent(ctx, Event{Request: tools.Request{Source: tools.SourceDiscord, ChatID: 1, MessageID: 1, Args: "ignored"}})
	r.HandleEvent(ctx, Event{Request: tools.Request{Source: tools.SourceTelegram, Command: "echo", Args: "not indexed"}})

	require.Len(t, idx.metas, 1)
	assert.Equal(t, memory.Metadata{ChatID: -100123, MessageID: 55, Tags: map[string]any{"source": tools.SourceTelegram}}, idx.metas[0])
	assert.Equal(t, []string{"hello"}, idx.texts)
}

func TestRuntimeReportsIndexErrors(t *testing.T) {
	boom := errors.New("qdrant down")
	rep := &fakeReporter{}
	r := newTestRuntime(t, &fakeIndexer{err: boom}, rep)

	r.HandleEvent(context.Background(), Event{Request: tools.Request{Source: tools.SourceTelegram, ChatID: 1, Args: "x"}})
	require.Len(t, rep.errs, 1)
	assert.ErrorIs(t, rep.errs[0], boom)
}

func TestRuntimeStart(t *testing.T) {
	r := newTestRuntime(t, nil, nil)
	out := &replies{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	r.QueueEvent(Event{Request: tools.Request{Command: "echo", Args: "one"}, Reply: out.reply})
	r.QueueEvent(Event{Request: tools.Request{Command: "echo", Args: "two"}, Reply: out.reply})

	assert.Eventually(t, func() bool { return len(out.all()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"one", "two"}, out.all())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runtime did not stop")
	}
}

func TestHandleEventLogsEveryMessage(t *testing.T) {
	hook := logtest.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer func() {
		log.SetLevel(level)
		hook.Reset()
	}()

	rt := newTestRuntime(t, &fakeIndexer{}, nil)
	rt.HandleEvent(context.Background(), Event{Request: tools.Request{
		Source:    tools.SourceTelegram,
		ChatID:    -100123,
		MessageID: 55,
		Args:      "hello",
	}})

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == log.DebugLevel && e.Data["message_id"] == int64(55) {
			found = true
			assert.Contains(t, e.Message, "hello")
			assert.Equal(t, int64(-100123), e.Data["chat_id"])
		}
	}
	assert.True(t, found)
}
