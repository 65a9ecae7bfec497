package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/telegraph"
	"GoTelegramAI/app/tools"
)

const reportLogLines = 30

// ErrorReporter publishes an error page and hands its URL to notify, which
// usually messages the developer chat.
type ErrorReporter struct {
	publisher telegraph.Publisher
	notify    func(ctx context.Context, text string) error
	logs      *LogBuffer
}

var _ Reporter = &ErrorReporter{}

func NewErrorReporter(publisher telegraph.Publisher, notify func(ctx context.Context, text string) error, logs *LogBuffer) *ErrorReporter {
	return &ErrorReporter{publisher: publisher, notify: notify, logs: logs}
}

func (e *ErrorReporter) Report(ctx context.Context, req tools.Request, err error) {
	page, buildErr := ReportHTML(req, err, e.recentLogs())
	if buildErr != nil {
		log.Warnf("⚠️ Error report not built: %v", buildErr)
		return
	}
	url, pubErr := e.publisher.CreatePage(ctx, "Error", page)
	if pubErr != nil {
		log.Warnf("⚠️ Error report not published: %v", pubErr)
		return
	}
	if notifyErr := e.notify(ctx, url); notifyErr != nil {
		log.Warnf("⚠️ Error report not delivered: %v", notifyErr)
	}
}

func (e *ErrorReporter) recentLogs() []string {
	if e.logs == nil {
		return nil
	}
	return e.logs.Last(reportLogLines)
}

func ReportHTML(req tools.Request, err error, logs []string) (string, error) {
	var dump bytes.Buffer
	enc := json.NewEncoder(&dump)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if jsonErr := enc.Encode(req); jsonErr != nil {
		return "", jsonErr
	}

	var sb strings.Builder
	sb.WriteString("<p>An error was raised while handling a message</p>\n")
	fmt.Fprintf(&sb, "<pre>request = %s</pre>\n", html.EscapeString(strings.TrimSpace(dump.String())))
	fmt.Fprintf(&sb, "<pre>error = %s</pre>\n", html.EscapeString(err.Error()))
	if len(logs) > 0 {
		fmt.Fprintf(&sb, "<pre>%s</pre>\n", html.EscapeString(strings.Join(logs, "\n")))
	}
	return sb.String(), nil
}
