package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/memory"
	"GoTelegramAI/app/tools"
	"GoTelegramAI/app/utils"
)

const queueSize = 100

const failureNotice = "❌ Sorry, something went wrong while handling your message."

type Indexer interface {
	Index(ctx context.Context, meta memory.Metadata, texts ...string) ([]memory.Point, error)
}

type Reporter interface {
	Report(ctx context.Context, req tools.Request, err error)
}

// Event is one incoming chat message. Reply sends text back to where the
// message came from.
type Event struct {
	Request tools.Request
	Reply   func(ctx context.Context, text string) error
}

type Runtime struct {
	tools    *tools.Registry
	indexer  Indexer
	reporter Reporter
	events   chan Event
}

// NewRuntime wires the handlers. indexer and reporter may be nil.
func NewRuntime(registry *tools.Registry, indexer Indexer, reporter Reporter) *Runtime {
	return &Runtime{
		tools:    registry,
		indexer:  indexer,
		reporter: reporter,
		events:   make(chan Event, queueSize),
	}
}

// QueueEvent never blocks the client's update loop. It reports false when
// the queue is full and the event was dropped.
func (r *Runtime) QueueEvent(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	default:
		log.WithField("chat_id", ev.Request.ChatID).Warn("⚠️ Event queue is full, dropping event")
		return false
	}
}

// Start handles queued events one at a time until ctx is done.
func (r *Runtime) Start(ctx context.Context) {
	log.Info("🚀 Runtime started")
	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Runtime stopped")
			return
		case ev := <-r.events:
			r.HandleEvent(ctx, ev)
		}
	}
}

func (r *Runtime) HandleEvent(ctx context.Context, ev Event) {
	req := ev.Request
	logger := log.WithFields(log.Fields{
		"source":  req.Source,
		"chat_id": req.ChatID,
		"command": req.Command,
	})
	logger.WithField("message_id", req.MessageID).Debugf("💬 Message received: %s", utils.Truncate(req.Args, 200))

	if req.Command == "" {
		if err := r.remember(ctx, req); err != nil {
			logger.Errorf("❌ Error indexing message: %v", err)
			r.report(ctx, req, err)
		}
		return
	}

	logger.Info("🆕 New command received")
	out, err := r.execute(ctx, req)
	switch {
	case errors.Is(err, tools.ErrUnknownCommand):
		logger.Debug("🤷 Ignoring unknown command")
		return
	case errors.Is(err, tools.ErrNoInput):
		out = fmt.Sprintf("✍️ Nothing to work with. Add some text or reply to a message. (%v)", err)
	case err != nil:
		logger.Errorf("❌ Error executing command: %v", err)
		r.report(ctx, req, err)
		out = failureNotice
	}

	if ev.Reply == nil {
		return
	}
	if err = ev.Reply(ctx, out); err != nil {
		logger.Errorf("❌ Error sending reply: %v", err)
	}
}

func (r *Runtime) execute(ctx context.Context, req tools.Request) (string, error) {
	tool, ok := r.tools.Get(req.Command)
	if !ok {
		return "", fmt.Errorf("%w: %s", tools.ErrUnknownCommand, req.Command)
	}
	return tool.HandlerFunc(ctx, req)
}

// remember indexes plain Telegram messages so /search and /ask can find them.
func (r *Runtime) remember(ctx context.Context, req tools.Request) error {
	if r.indexer == nil || req.Source != tools.SourceTelegram {
		return nil
	}
	text := strings.TrimSpace(req.Args)
	if text == "" {
		return nil
	}
	_, err := r.indexer.Index(ctx, memory.Metadata{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Tags:      map[string]any{"source": req.Source},
	}, text)
	return err
}

func (r *Runtime) report(ctx context.Context, req tools.Request, err error) {
	if r.reporter != nil {
		r.reporter.Report(ctx, req, err)
	}
}
